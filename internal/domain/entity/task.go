package entity

type Task struct {
	ID       string
	Goal     string
	StartURL string
	Headless bool
}

func NewTask(id, goal string) Task {
	return Task{ID: id, Goal: goal}
}
