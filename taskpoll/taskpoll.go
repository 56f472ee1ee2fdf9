// flowork/taskpoll/taskpoll.go

// Package taskpoll 은 백그라운드 작업의 진행 상황을 1초 간격으로 조회하는
// 클라이언트를 담당한다. processing 동안 진행률 콜백을 부르고,
// completed / error 중 하나의 종료 콜백을 정확히 한 번 부른 뒤 멈춘다.
// 조회 중의 통신 오류는 삼키고 다음 주기에 다시 시도한다.
// 재시도 상한은 두지 않는다. 작업이 끝나거나 감시를 끊을 때까지 계속 돈다.
package taskpoll

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"flowork/model"
)

const defaultInterval = time.Second

// Callbacks 는 감시 중 일어나는 일에 대한 훅. nil 필드는 건너뛴다.
type Callbacks struct {
	OnProgress  func(st model.TaskState) // status=processing 응답마다
	OnCompleted func(st model.TaskState) // 정상 종료 시 한 번
	OnError     func(st model.TaskState) // 오류 종료 시 한 번
}

// Client 는 한 화면 컨텍스트가 소유하는 감시자.
// 같은 Client 에서 Watch 를 다시 부르면 이전 감시는 취소된다.
// 타이머가 겹겹이 도는 일은 없다.
type Client struct {
	base     string
	httpc    *http.Client
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(baseURL string) *Client {
	return &Client{
		base:     baseURL,
		httpc:    &http.Client{},
		interval: defaultInterval,
	}
}

// NewWithInterval 은 조회 주기를 바꾼 클라이언트. 테스트용.
func NewWithInterval(baseURL string, interval time.Duration) *Client {
	c := New(baseURL)
	c.interval = interval
	return c
}

// Watch 는 taskID 의 감시를 시작한다. 진행 중이던 감시가 있으면 먼저
// 취소하고 끝나기를 기다린 뒤 새로 시작한다.
func (c *Client) Watch(taskID string, cb Callbacks) {
	c.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	go c.loop(ctx, taskID, cb, done)
}

// Stop 은 진행 중인 감시를 취소한다. 감시 고루틴이 빠져나갈 때까지
// 기다리므로 돌아온 뒤에는 콜백이 더 불리지 않는다.
func (c *Client) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (c *Client) loop(ctx context.Context, taskID string, cb Callbacks, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		st, err := c.fetch(ctx, taskID)
		if err != nil {
			// 통신 오류는 삼키고 다음 주기에 재시도.
			continue
		}

		switch st.Status {
		case model.TaskStatusProcessing:
			if cb.OnProgress != nil {
				cb.OnProgress(st)
			}
		case model.TaskStatusCompleted:
			if cb.OnCompleted != nil {
				cb.OnCompleted(st)
			}
			return
		case model.TaskStatusError:
			if cb.OnError != nil {
				cb.OnError(st)
			}
			return
		}
	}
}

func (c *Client) fetch(ctx context.Context, taskID string) (model.TaskState, error) {
	var st model.TaskState

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/task_status/%s", c.base, taskID), nil)
	if err != nil {
		return st, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return st, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("taskpoll: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, err
	}
	return st, nil
}
