// flowork/task/registry.go

// Package task 는 엑셀 가져오기 같은 백그라운드 작업의 진행 상태를
// 메모리에 보관하는 레지스트리를 담당한다. 서버 재시작 시 상태는 사라지며,
// 폴링 중이던 화면은 통신 오류를 삼키다가 다음 업로드에서 새 작업을 받는다.
package task

import (
	"sync"

	"github.com/google/uuid"

	"flowork/model"
)

// Registry 는 작업 ID → 상태 맵. 업로드 핸들러와 작업 고루틴,
// 상태 조회 핸들러가 동시에 접근하므로 잠금으로 보호한다.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]model.TaskState
}

func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]model.TaskState)}
}

// Create 는 processing 상태의 새 작업을 만들고 ID 를 돌려준다.
func (r *Registry) Create() string {
	id := uuid.NewString()
	r.mu.Lock()
	r.tasks[id] = model.TaskState{TaskID: id, Status: model.TaskStatusProcessing}
	r.mu.Unlock()
	return id
}

// Progress 는 진행률 갱신. total 0 이면 percent 는 0 으로 둔다.
func (r *Registry) Progress(id string, current, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.tasks[id]
	if !ok || st.Terminal() {
		return
	}
	st.Current = current
	st.Total = total
	if total > 0 {
		st.Percent = current * 100 / total
	}
	r.tasks[id] = st
}

// Complete 는 작업을 완료 상태로 마감한다. result 는 화면 안내용 집계값.
func (r *Registry) Complete(id, message string, result map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.tasks[id]
	if !ok || st.Terminal() {
		return
	}
	st.Status = model.TaskStatusCompleted
	st.Percent = 100
	st.Message = message
	st.Result = result
	r.tasks[id] = st
}

// Fail 은 작업을 오류 상태로 마감한다.
func (r *Registry) Fail(id, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.tasks[id]
	if !ok || st.Terminal() {
		return
	}
	st.Status = model.TaskStatusError
	st.Message = message
	r.tasks[id] = st
}

func (r *Registry) Get(id string) (model.TaskState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.tasks[id]
	return st, ok
}
