package dsl

// ItemBuilder provides a fluent API for wiring one registered item.
type ItemBuilder struct {
	name    string
	builder *Builder
}

// Then appends successors (by item name) to this item.
func (i *ItemBuilder) Then(names ...string) *ItemBuilder {
	i.builder.successors[i.name] = append(i.builder.successors[i.name], names...)
	return i
}

// PassThrough turns the item's execution permit off: its logic is
// skipped, but it still yields its output resources to its neighbors.
func (i *ItemBuilder) PassThrough() *ItemBuilder {
	i.builder.permits[i.name] = false
	return i
}
