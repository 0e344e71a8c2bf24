package graphcanvas

// DragDropOperation is the object a drag trigger produces once a drag
// gesture is detected. Ownership passes to the canvas's drag machinery;
// linkers do not retain operations.
type DragDropOperation interface {
	// Setup is called once with the widget the gesture started on and, if
	// that widget is a ContextProvider, its context object. Returning false
	// discards the operation and the next trigger is tried.
	Setup(source Widget, payload any) bool

	// OnHoverWidget is called while the operation is over target. It reports
	// whether the hover was handled.
	OnHoverWidget(target Widget) bool

	// CanDropOnWidget is called when the pointer is released over target.
	// Returning false cancels the operation.
	CanDropOnWidget(target Widget) bool
}

// DragUpdater is implemented by operations that follow the pointer.
// screen is the canvas-local cursor position and delta the movement since
// the previous call.
type DragUpdater interface {
	OnDragged(screen, delta Vec2)
}

// DragEnterer is implemented by operations that react to entering a widget.
type DragEnterer interface {
	OnDragEnter(target Widget)
}

// DragLeaver is implemented by operations that react to leaving a widget.
type DragLeaver interface {
	OnDragLeave(target Widget)
}

// DragCanceller is implemented by operations that need cleanup when the
// drag ends without a drop.
type DragCanceller interface {
	OnDragCancelled(target Widget)
}
