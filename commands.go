package shadowbox

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// Quit stops the frame loop after the current stage finishes.
func (cmd *Commands) Quit() {
	cmd.app.quit()
}
