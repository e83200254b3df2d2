// Package ports declares the boundary interfaces between the engine core
// and the outside world, so that description loaders and presentation
// surfaces can be swapped without touching the runtime.
package ports
