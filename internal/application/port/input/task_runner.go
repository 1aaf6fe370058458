package input

import (
	"context"

	"webagent/internal/domain/entity"
)

type TaskRunner interface {
	Run(ctx context.Context, task entity.Task) (*entity.RunResult, error)
}
