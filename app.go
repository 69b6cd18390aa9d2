package shadowbox

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

// Module wires resources and systems into the App at build time.
type Module interface {
	Install(app *App, cmd *Commands)
}

// App owns the resource map and the per-stage system lists. One iteration
// of Run is one frame; stages execute in declaration order within a frame.
type App struct {
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
	quitting  bool
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

// Run drives the frame loop until a system requests quit. All systems run
// on the calling goroutine; the host window serializes input and render
// callbacks onto this one thread.
func (app *App) Run() {
	for !app.quitting {
		for _, stage := range app.stages {
			for _, system := range app.systems[stage.Name] {
				app.callSystem(system)
			}
			if app.quitting {
				break
			}
		}
	}
}

func (app *App) quit() {
	app.quitting = true
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the installed resource of type T, or nil if no module
// has added one yet.
func Resource[T any](app *App) *T {
	var zero T
	if r, ok := app.resources[reflect.TypeOf(zero)]; ok {
		return r.(*T)
	}
	return nil
}

var typeOfCommands = reflect.TypeOf(Commands{})

// callSystem resolves each parameter of the system function against the
// resource map (or injects a fresh Commands) and invokes it.
func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				fmt.Sprint(systemType),
				fmt.Sprint(argType),
			)
			panic(msg)
		}
	}
	systemValue.Call(args)
}
