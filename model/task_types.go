// flowork/model/task_types.go
package model

const (
	TaskStatusProcessing = "processing"
	TaskStatusCompleted  = "completed"
	TaskStatusError      = "error"
)

// TaskState 는 GET /api/task_status/{id} 응답 형태 그대로의 비동기 작업 상태.
type TaskState struct {
	TaskID  string         `json:"task_id"`
	Status  string         `json:"status"`
	Percent int            `json:"percent"`
	Current int            `json:"current"`
	Total   int            `json:"total"`
	Message string         `json:"message,omitempty"`
	Result  map[string]any `json:"result,omitempty"`
}

// Terminal 은 폴링을 멈춰야 하는 상태인지 여부.
func (t TaskState) Terminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusError
}
