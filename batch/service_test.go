// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package batch_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/juju/clock"
	"github.com/juju/clock/testclock"

	"github.com/go-ycloud/ycml-go/auth"
	"github.com/go-ycloud/ycml-go/batch"
	"github.com/go-ycloud/ycml-go/client"
)

func newService(t *testing.T, handler http.Handler, clk clock.Clock) batch.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	authenticator := auth.NewAuthenticator(
		auth.NewStaticSource(auth.NewCredential(auth.KindIAMToken, "t1.testtoken")),
	)
	opts := []client.Option{
		client.WithServiceMap(map[string]string{"batch-inference": srv.URL}),
	}
	if clk != nil {
		opts = append(opts, client.WithClock(clk))
	}
	return batch.NewService(client.New(authenticator, opts...), "b1gfolder")
}

func TestRun(t *testing.T) {
	var gotBody map[string]any
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/batch/v1/tasks" {
			http.NotFound(w, r)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		if err := sonic.Unmarshal(raw, &gotBody); err != nil {
			t.Error(err)
		}
		w.Write([]byte(`{"taskId":"bt1","folderId":"b1gfolder","status":"CREATED"}`))
	}), nil)

	deferred, err := svc.Run(context.Background(), batch.RunParams{
		ModelURI:  "gpt://b1gfolder/yandexgpt-lite",
		DatasetID: "ds1",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if deferred.TaskID != "bt1" {
		t.Errorf("TaskID = %q", deferred.TaskID)
	}
	if got := gotBody["sourceDatasetId"]; got != "ds1" {
		t.Errorf("sourceDatasetId = %v", got)
	}
}

func TestRun_Validation(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	}), nil)

	if _, err := svc.Run(context.Background(), batch.RunParams{ModelURI: "gpt://f/m"}); err == nil {
		t.Fatal("expected error without dataset")
	}
	if _, err := svc.Run(context.Background(), batch.RunParams{DatasetID: "ds1"}); err == nil {
		t.Fatal("expected error without model URI")
	}
}

func TestWait_ReturnsResultDataset(t *testing.T) {
	var polls atomic.Int32
	clk := testclock.NewClock(time.Now())
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/batch/v1/tasks":
			w.Write([]byte(`{"taskId":"bt1","status":"CREATED"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/batch/v1/tasks/bt1":
			if polls.Add(1) < 2 {
				w.Write([]byte(`{"taskId":"bt1","status":"IN_PROGRESS","completedJobsCount":"40","totalJobsCount":"100"}`))
				return
			}
			w.Write([]byte(`{"taskId":"bt1","status":"COMPLETED","resultDatasetId":"ds-out"}`))
		default:
			http.NotFound(w, r)
		}
	}), clk)

	deferred, err := svc.Run(context.Background(), batch.RunParams{
		ModelURI:  "gpt://b1gfolder/yandexgpt-lite",
		DatasetID: "ds1",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	done := make(chan struct{})
	var task *batch.Task
	var waitErr error
	go func() {
		defer close(done)
		task, waitErr = deferred.Wait(context.Background())
	}()

	if err := clk.WaitAdvance(batch.DefaultPollInterval, time.Second, 1); err != nil {
		t.Fatalf("WaitAdvance: %v", err)
	}
	<-done

	if waitErr != nil {
		t.Fatalf("Wait: %v", waitErr)
	}
	if task.ResultDatasetID != "ds-out" {
		t.Errorf("ResultDatasetID = %q", task.ResultDatasetID)
	}
}

func TestWait_CanceledTask(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			w.Write([]byte(`{"taskId":"bt1","status":"CREATED"}`))
		default:
			w.Write([]byte(`{"taskId":"bt1","status":"CANCELED"}`))
		}
	}), nil)

	deferred, err := svc.Run(context.Background(), batch.RunParams{
		ModelURI:  "gpt://b1gfolder/yandexgpt-lite",
		DatasetID: "ds1",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	task, err := deferred.Wait(context.Background())
	if err == nil {
		t.Fatal("expected error for canceled task")
	}
	if task == nil || task.Status != batch.StatusCanceled {
		t.Errorf("task = %+v", task)
	}
}

func TestCancel(t *testing.T) {
	var canceled bool
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/batch/v1/tasks/bt1:cancel" {
			http.NotFound(w, r)
			return
		}
		canceled = true
		w.Write([]byte(`{}`))
	}), nil)

	if err := svc.Cancel(context.Background(), "bt1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !canceled {
		t.Error("cancel request never reached the server")
	}
}

func TestList(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/batch/v1/tasks" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("folderId"); got != "b1gfolder" {
			t.Errorf("folderId query = %q", got)
		}
		w.Write([]byte(`{"tasks":[{"taskId":"bt1","status":"COMPLETED"},{"taskId":"bt2","status":"IN_PROGRESS"}]}`))
	}), nil)

	tasks, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "bt1" || tasks[1].Status != batch.StatusInProgress {
		t.Errorf("tasks = %+v", tasks)
	}
}
