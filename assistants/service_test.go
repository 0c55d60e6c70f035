// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package assistants_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"

	"github.com/go-ycloud/ycml-go/assistants"
	"github.com/go-ycloud/ycml-go/auth"
	"github.com/go-ycloud/ycml-go/client"
	"github.com/go-ycloud/ycml-go/tools"
)

func newService(t *testing.T, handler http.Handler) assistants.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	authenticator := auth.NewAuthenticator(
		auth.NewStaticSource(auth.NewCredential(auth.KindIAMToken, "t1.testtoken")),
	)
	c := client.New(authenticator,
		client.WithServiceMap(map[string]string{"ai-assistants": srv.URL}),
	)
	return assistants.NewService(c, "b1gfolder")
}

func TestCreate(t *testing.T) {
	var gotBody map[string]any
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/assistants/v1/assistants" {
			http.NotFound(w, r)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		if err := sonic.Unmarshal(raw, &gotBody); err != nil {
			t.Error(err)
		}
		w.Write([]byte(`{"id":"ast1","folderId":"b1gfolder","modelUri":"gpt://b1gfolder/yandexgpt"}`))
	}))

	assistant, err := svc.Create(context.Background(), assistants.AssistantParams{
		ModelURI:    "gpt://b1gfolder/yandexgpt",
		Name:        "helper",
		Instruction: "be brief",
		Temperature: 0.3,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if assistant.ID != "ast1" {
		t.Errorf("ID = %q, want ast1", assistant.ID)
	}
	if got := gotBody["folderId"]; got != "b1gfolder" {
		t.Errorf("folderId = %v", got)
	}
	opts, ok := gotBody["completionOptions"].(map[string]any)
	if !ok || opts["temperature"] != 0.3 {
		t.Errorf("completionOptions = %v", gotBody["completionOptions"])
	}
}

func TestCreate_WithSearchIndexTool(t *testing.T) {
	var gotBody map[string]any
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if err := sonic.Unmarshal(raw, &gotBody); err != nil {
			t.Error(err)
		}
		w.Write([]byte(`{"id":"ast1","folderId":"b1gfolder","modelUri":"gpt://b1gfolder/yandexgpt","tools":[{"searchIndex":{"searchIndexIds":["idx1"],"maxNumResults":"5"}}]}`))
	}))

	assistant, err := svc.Create(context.Background(), assistants.AssistantParams{
		ModelURI: "gpt://b1gfolder/yandexgpt",
		Tools: []tools.Tool{
			tools.SearchIndex([]string{"idx1"}, tools.WithMaxNumResults(5)),
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sent, ok := gotBody["tools"].([]any)
	if !ok || len(sent) != 1 {
		t.Fatalf("tools = %v, want one entry", gotBody["tools"])
	}
	entry, _ := sent[0].(map[string]any)
	si, _ := entry["searchIndex"].(map[string]any)
	if si == nil {
		t.Fatalf("tool entry = %v, want a searchIndex tool", entry)
	}
	ids, _ := si["searchIndexIds"].([]any)
	if len(ids) != 1 || ids[0] != "idx1" {
		t.Errorf("searchIndexIds = %v", si["searchIndexIds"])
	}
	if si["maxNumResults"] != "5" {
		t.Errorf("maxNumResults = %v, want \"5\"", si["maxNumResults"])
	}

	if len(assistant.Tools) != 1 || assistant.Tools[0].SearchIndex == nil {
		t.Fatalf("decoded tools = %+v", assistant.Tools)
	}
	if got := assistant.Tools[0].SearchIndex.SearchIndexIDs[0]; got != "idx1" {
		t.Errorf("decoded index ID = %q", got)
	}
}

func TestUpdate_ToolsInMask(t *testing.T) {
	var gotBody map[string]any
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if err := sonic.Unmarshal(raw, &gotBody); err != nil {
			t.Error(err)
		}
		w.Write([]byte(`{"id":"ast1","folderId":"b1gfolder","modelUri":"gpt://b1gfolder/yandexgpt"}`))
	}))

	_, err := svc.Update(context.Background(), "ast1", assistants.AssistantParams{
		Tools: []tools.Tool{tools.SearchIndex([]string{"idx2"})},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := gotBody["updateMask"]; got != "tools" {
		t.Errorf("updateMask = %v, want tools", got)
	}
}

func TestCreate_RequiresModelURI(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	}))

	if _, err := svc.Create(context.Background(), assistants.AssistantParams{Name: "x"}); err == nil {
		t.Fatal("expected error without model URI")
	}
}

func TestUpdate_SendsMask(t *testing.T) {
	var gotBody map[string]any
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/assistants/v1/assistants/ast1" {
			http.NotFound(w, r)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		if err := sonic.Unmarshal(raw, &gotBody); err != nil {
			t.Error(err)
		}
		w.Write([]byte(`{"id":"ast1","folderId":"b1gfolder","modelUri":"gpt://b1gfolder/yandexgpt","name":"renamed"}`))
	}))

	assistant, err := svc.Update(context.Background(), "ast1", assistants.AssistantParams{
		Name:        "renamed",
		Instruction: "be verbose",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if assistant.Name != "renamed" {
		t.Errorf("Name = %q", assistant.Name)
	}
	if got := gotBody["updateMask"]; got != "name,instruction" {
		t.Errorf("updateMask = %v, want name,instruction", got)
	}
}

func TestDelete(t *testing.T) {
	var deleted bool
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/assistants/v1/assistants/ast1" {
			http.NotFound(w, r)
			return
		}
		deleted = true
		w.Write([]byte(`{}`))
	}))

	if err := svc.Delete(context.Background(), "ast1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !deleted {
		t.Error("delete request never reached the server")
	}
}

func TestListenRun_PollsUntilCompleted(t *testing.T) {
	const completed = `{
		"id":"run1","assistantId":"ast1","threadId":"thr1",
		"state":{"status":"COMPLETED","completedMessage":{"content":{"content":[{"text":{"content":"done: "}},{"text":{"content":"ok"}}]}}}
	}`

	var polls int
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/assistants/v1/runs":
			w.Write([]byte(`{"id":"run1","assistantId":"ast1","threadId":"thr1","state":{"status":"PENDING"}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/assistants/v1/runs/run1":
			polls++
			if polls < 3 {
				w.Write([]byte(`{"id":"run1","state":{"status":"IN_PROGRESS"}}`))
				return
			}
			w.Write([]byte(completed))
		default:
			http.NotFound(w, r)
		}
	}))

	run, err := svc.Run(context.Background(), "ast1", "thr1", assistants.RunParams{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Status() != assistants.RunStatusPending {
		t.Errorf("initial status = %q", run.Status())
	}

	run, err = svc.ListenRun(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("ListenRun: %v", err)
	}
	if run.Status() != assistants.RunStatusCompleted {
		t.Errorf("final status = %q", run.Status())
	}
	if got := run.State.CompletedMsg.Text(); got != "done: ok" {
		t.Errorf("message text = %q", got)
	}
	if polls != 3 {
		t.Errorf("polls = %d, want 3", polls)
	}
}

func TestListenRun_SurfacesFailure(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"run1","state":{"status":"FAILED","error":{"code":13,"message":"model overloaded"}}}`))
	}))

	run, err := svc.ListenRun(context.Background(), "run1")
	var runErr *assistants.RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("err = %v, want *RunError", err)
	}
	if runErr.Message != "model overloaded" {
		t.Errorf("Message = %q", runErr.Message)
	}
	if run == nil || run.Status() != assistants.RunStatusFailed {
		t.Errorf("run = %+v", run)
	}
}
