package shadowbox

import "fmt"

// Stage is a named slot in the per-frame execution order. The default
// stages cover the whole frame: input polling, state mutation, matrix
// recomputation and GPU upload, then the render passes.
type Stage struct {
	Name string
}

var (
	PreUpdate = Stage{Name: "PreUpdate"}
	Update    = Stage{Name: "Update"}
	PreRender = Stage{Name: "PreRender"}
	Render    = Stage{Name: "Render"}
)

var defaultStages = []Stage{PreUpdate, Update, PreRender, Render}

type systemScheduleBuilder struct {
	inStage Stage
	system  systemFn
}

// System starts a schedule builder for a system function. Without an
// explicit stage the system lands in Update.
func System(system systemFn) systemScheduleBuilder {
	return systemScheduleBuilder{
		system:  system,
		inStage: Update,
	}
}

func (sched systemScheduleBuilder) InStage(s Stage) systemScheduleBuilder {
	return systemScheduleBuilder{
		system:  sched.system,
		inStage: s,
	}
}

func (app *App) UseSystem(system systemScheduleBuilder) *App {
	if _, ok := app.systems[system.inStage.Name]; !ok {
		panic(fmt.Sprintf("Stage %v doesn't exist", system.inStage.Name))
	}
	app.systems[system.inStage.Name] = append(app.systems[system.inStage.Name], system.system)
	return app
}
