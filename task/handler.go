// flowork/task/handler.go
package task

import (
	"encoding/json"
	"net/http"
	"strings"
)

// StatusHandler 는 GET /api/task_status/{id} 처리.
// 폴링 클라이언트가 1초마다 부르는 엔드포인트라 본문은 상태 그대로만 싣는다.
func StatusHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		taskID := strings.TrimPrefix(r.URL.Path, "/api/task_status/")
		if taskID == "" {
			http.Error(w, "작업 ID가 필요합니다", http.StatusBadRequest)
			return
		}

		st, ok := reg.Get(taskID)
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{
				"status":  "error",
				"message": "존재하지 않는 작업입니다",
			})
			return
		}
		json.NewEncoder(w).Encode(st)
	}
}
