package keymap

// DefaultBindings returns the default key bindings for the catalog browser.
// Bindings are organized by context and follow vim conventions where applicable.
func DefaultBindings() []Binding {
	return []Binding{
		// ============================================================
		// GLOBAL BINDINGS
		// ============================================================
		{Key: "q", Command: CmdQuit, Context: ContextGlobal, Description: "Quit"},
		{Key: "ctrl+c", Command: CmdQuit, Context: ContextGlobal, Description: "Quit"},
		{Key: "?", Command: CmdToggleHelp, Context: ContextGlobal, Description: "Toggle help"},

		// ============================================================
		// MAIN LIST BINDINGS
		// ============================================================

		// Cursor movement within the page
		{Key: "j", Command: CmdCursorDown, Context: ContextMain, Description: "Move down"},
		{Key: "down", Command: CmdCursorDown, Context: ContextMain, Description: "Move down"},
		{Key: "k", Command: CmdCursorUp, Context: ContextMain, Description: "Move up"},
		{Key: "up", Command: CmdCursorUp, Context: ContextMain, Description: "Move up"},
		{Key: "g g", Command: CmdCursorTop, Context: ContextMain, Description: "Go to top"},
		{Key: "G", Command: CmdCursorBottom, Context: ContextMain, Description: "Go to bottom"},

		// Pager
		{Key: "l", Command: CmdNextPage, Context: ContextMain, Description: "Next page"},
		{Key: "right", Command: CmdNextPage, Context: ContextMain, Description: "Next page"},
		{Key: "pgdown", Command: CmdNextPage, Context: ContextMain, Description: "Next page"},
		{Key: "h", Command: CmdPrevPage, Context: ContextMain, Description: "Previous page"},
		{Key: "left", Command: CmdPrevPage, Context: ContextMain, Description: "Previous page"},
		{Key: "pgup", Command: CmdPrevPage, Context: ContextMain, Description: "Previous page"},
		{Key: "home", Command: CmdFirstPage, Context: ContextMain, Description: "First page"},
		{Key: "end", Command: CmdLastPage, Context: ContextMain, Description: "Last page"},

		// Query
		{Key: "/", Command: CmdFocusFilter, Context: ContextMain, Description: "Edit filters"},
		{Key: "tab", Command: CmdFocusFilter, Context: ContextMain, Description: "Edit filters"},
		{Key: "ctrl+l", Command: CmdClearFilters, Context: ContextMain, Description: "Clear filters"},
		{Key: "c", Command: CmdCycleCap, Context: ContextMain, Description: "Cycle result cap"},
		{Key: "s", Command: CmdCycleSort, Context: ContextMain, Description: "Cycle sort attribute"},
		{Key: "v", Command: CmdToggleReverse, Context: ContextMain, Description: "Toggle reverse order"},
		{Key: "r", Command: CmdRefresh, Context: ContextMain, Description: "Refresh"},

		// Book actions
		{Key: "n", Command: CmdNewBook, Context: ContextMain, Description: "Add book"},
		{Key: "e", Command: CmdEditBook, Context: ContextMain, Description: "Edit book"},
		{Key: "x", Command: CmdDelete, Context: ContextMain, Description: "Delete book"},
		{Key: "enter", Command: CmdSummary, Context: ContextMain, Description: "Summary and recommendation"},
		{Key: "R", Command: CmdReviews, Context: ContextMain, Description: "Show reviews"},
		{Key: "w", Command: CmdWriteReview, Context: ContextMain, Description: "Write review"},

		// Account
		{Key: "i", Command: CmdSignIn, Context: ContextMain, Description: "Sign in"},
		{Key: "u", Command: CmdSignUp, Context: ContextMain, Description: "Sign up"},
		{Key: "o", Command: CmdSignOut, Context: ContextMain, Description: "Sign out"},
		{Key: "p", Command: CmdPreferences, Context: ContextMain, Description: "Reading preferences"},

		// ============================================================
		// FILTER BINDINGS
		// Active while a filter input has focus. Other keys are typed.
		// ============================================================
		{Key: "tab", Command: CmdNextFilter, Context: ContextFilter, Description: "Next filter"},
		{Key: "shift+tab", Command: CmdPrevFilter, Context: ContextFilter, Description: "Previous filter"},
		{Key: "enter", Command: CmdLeaveFilter, Context: ContextFilter, Description: "Back to list"},
		{Key: "esc", Command: CmdLeaveFilter, Context: ContextFilter, Description: "Back to list"},

		// ============================================================
		// MODAL BINDINGS
		// ============================================================
		{Key: "j", Command: CmdScrollDown, Context: ContextModal, Description: "Scroll down"},
		{Key: "down", Command: CmdScrollDown, Context: ContextModal, Description: "Scroll down"},
		{Key: "k", Command: CmdScrollUp, Context: ContextModal, Description: "Scroll up"},
		{Key: "up", Command: CmdScrollUp, Context: ContextModal, Description: "Scroll up"},
		{Key: "w", Command: CmdWriteReview, Context: ContextModal, Description: "Write review"},
		{Key: "esc", Command: CmdClose, Context: ContextModal, Description: "Close"},
		{Key: "enter", Command: CmdClose, Context: ContextModal, Description: "Close"},
		{Key: "q", Command: CmdClose, Context: ContextModal, Description: "Close"},

		// ============================================================
		// CONFIRM BINDINGS
		// ============================================================
		{Key: "y", Command: CmdConfirm, Context: ContextConfirm, Description: "Confirm"},
		{Key: "enter", Command: CmdConfirm, Context: ContextConfirm, Description: "Confirm"},
		{Key: "n", Command: CmdCancel, Context: ContextConfirm, Description: "Cancel"},
		{Key: "esc", Command: CmdCancel, Context: ContextConfirm, Description: "Cancel"},

		// ============================================================
		// FORM BINDINGS
		// ============================================================
		{Key: "ctrl+s", Command: CmdFormSubmit, Context: ContextForm, Description: "Submit form"},
		{Key: "esc", Command: CmdFormCancel, Context: ContextForm, Description: "Cancel form"},

		// ============================================================
		// HELP BINDINGS
		// ============================================================
		{Key: "esc", Command: CmdToggleHelp, Context: ContextHelp, Description: "Close help"},
		{Key: "j", Command: CmdScrollDown, Context: ContextHelp, Description: "Scroll down"},
		{Key: "down", Command: CmdScrollDown, Context: ContextHelp, Description: "Scroll down"},
		{Key: "k", Command: CmdScrollUp, Context: ContextHelp, Description: "Scroll up"},
		{Key: "up", Command: CmdScrollUp, Context: ContextHelp, Description: "Scroll up"},
	}
}

// RegisterDefaults registers all default bindings with the registry.
func RegisterDefaults(r *Registry) {
	r.RegisterBindings(DefaultBindings())
}
