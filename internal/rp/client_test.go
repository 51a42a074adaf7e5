package rp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

// --- Launch tests ---

func TestLaunchScope_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/ecosystem-qe/launch/33195" && r.Method == "GET" {
			json.NewEncoder(w).Encode(LaunchResource{
				ID:   33195,
				UUID: "abc-uuid",
				Name: "periodic-e2e-4.19",
			})
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client, err := New(server.URL, "test-token", WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatal(err)
	}

	launch, err := client.Project("ecosystem-qe").Launches().Get(context.Background(), 33195)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if launch.ID != 33195 || launch.Name != "periodic-e2e-4.19" {
		t.Errorf("unexpected launch: %+v", launch)
	}
}

func TestLaunchScope_List_TimeWindow(t *testing.T) {
	var gotGte, gotLte string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotGte = r.URL.Query().Get("filter.gte.startTime")
		gotLte = r.URL.Query().Get("filter.lte.startTime")
		json.NewEncoder(w).Encode(PagedLaunches{
			Content: []LaunchResource{{ID: 1, Name: "launch-1"}},
			Page:    PageInfo{Number: 1, Size: 100, TotalElements: 1, TotalPages: 1},
		})
	}))
	defer server.Close()

	client, _ := New(server.URL, "test-token", WithHTTPClient(server.Client()))
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	result, err := client.Project("ecosystem-qe").Launches().List(context.Background(),
		WithStartedBetween(from, to))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Content) != 1 {
		t.Errorf("expected 1 launch, got %d", len(result.Content))
	}
	if gotGte != strconv.FormatInt(from.UnixMilli(), 10) {
		t.Errorf("gte param = %q", gotGte)
	}
	if gotLte != strconv.FormatInt(to.UnixMilli(), 10) {
		t.Errorf("lte param = %q", gotLte)
	}
}

func TestLaunchScope_ListAll_Paginates(t *testing.T) {
	pagesServed := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page.page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("page.size"))
		pagesServed++

		var content []LaunchResource
		if page == 1 {
			for i := 0; i < size; i++ {
				content = append(content, LaunchResource{ID: i + 1})
			}
		} else {
			content = []LaunchResource{{ID: size + 1}}
		}
		json.NewEncoder(w).Encode(PagedLaunches{Content: content})
	}))
	defer server.Close()

	client, _ := New(server.URL, "test-token", WithHTTPClient(server.Client()))
	all, err := client.Project("ecosystem-qe").Launches().ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if pagesServed != 2 {
		t.Errorf("expected 2 pages served, got %d", pagesServed)
	}
	if len(all) != 101 {
		t.Errorf("expected 101 launches, got %d", len(all))
	}
}

func TestLaunchScope_ListAll_ServerCapsPageSize(t *testing.T) {
	// The server caps pages at 50 regardless of the requested size but
	// reports totalPages; pagination must trust that over page fullness.
	const capped, total = 50, 150
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page.page"))
		content := make([]LaunchResource, capped)
		for i := range content {
			content[i] = LaunchResource{ID: (page-1)*capped + i + 1}
		}
		json.NewEncoder(w).Encode(PagedLaunches{
			Content: content,
			Page:    PageInfo{Number: page, Size: capped, TotalElements: total, TotalPages: total / capped},
		})
	}))
	defer server.Close()

	client, _ := New(server.URL, "test-token", WithHTTPClient(server.Client()))
	all, err := client.Project("ecosystem-qe").Launches().ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != total {
		t.Errorf("expected %d launches, got %d", total, len(all))
	}
	if all[total-1].ID != total {
		t.Errorf("last launch ID = %d, want %d", all[total-1].ID, total)
	}
}

// --- Item tests ---

func TestItemScope_ListAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("filter.eq.launchId") != "33195" {
			t.Errorf("missing launchId filter: %s", r.URL.RawQuery)
		}
		if r.URL.Query().Get("filter.eq.status") != "FAILED" {
			t.Errorf("missing status filter: %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(PagedItems{
			Content: []TestItemResource{
				{ID: 100, Name: "test-1", Status: "FAILED"},
				{ID: 101, Name: "test-2", Status: "FAILED"},
			},
			Page: PageInfo{TotalElements: 2},
		})
	}))
	defer server.Close()

	client, _ := New(server.URL, "test-token", WithHTTPClient(server.Client()))
	items, err := client.Project("ecosystem-qe").Items().ListAll(context.Background(),
		WithLaunchID(33195), WithStatus("FAILED"))
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}

func TestItemScope_AddComment(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/ecosystem-qe/item/100/comment" || r.Method != "POST" {
			http.NotFound(w, r)
			return
		}
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client, _ := New(server.URL, "test-token", WithHTTPClient(server.Client()))
	err := client.Project("ecosystem-qe").Items().AddComment(context.Background(), 100, "analysis text", "INFO")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if gotBody["message"] != "analysis text" || gotBody["level"] != "INFO" {
		t.Errorf("unexpected payload: %v", gotBody)
	}
}

func TestItemScope_Update(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/ecosystem-qe/item/100" || r.Method != "PUT" {
			http.NotFound(w, r)
			return
		}
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, _ := New(server.URL, "test-token", WithHTTPClient(server.Client()))
	err := client.Project("ecosystem-qe").Items().Update(context.Background(), 100,
		"TO_INVESTIGATE", "network", "AI categorized as network")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if gotBody["status"] != "TO_INVESTIGATE" {
		t.Errorf("unexpected status in payload: %v", gotBody)
	}
	issue, _ := gotBody["issue"].(map[string]any)
	if issue == nil || issue["issueType"] != "network" {
		t.Errorf("unexpected issue in payload: %v", gotBody)
	}
}

// --- Error tests ---

func TestDoJSON_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(ErrorRS{ErrorCode: 40410, Message: "Launch not found"})
	}))
	defer server.Close()

	client, _ := New(server.URL, "test-token", WithHTTPClient(server.Client()))
	_, err := client.Project("ecosystem-qe").Launches().Get(context.Background(), 99999)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("expected IsNotFound, got: %v", err)
	}
	if !HasErrorCode(err, 40410) {
		t.Errorf("expected error code 40410, got: %v", err)
	}
}

func TestErrorPredicates(t *testing.T) {
	err401 := newAPIError("list", 401, 0, "unauthorized")
	err403 := newAPIError("update", 403, 0, "forbidden")

	if !IsUnauthorized(err401) {
		t.Error("IsUnauthorized(401) = false")
	}
	if !IsForbidden(err403) {
		t.Error("IsForbidden(403) = false")
	}
	if IsNotFound(err401) {
		t.Error("IsNotFound(401) = true")
	}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New("", "token"); err == nil {
		t.Error("expected error for empty baseURL")
	}
}

func TestNew_RejectsNegativeRate(t *testing.T) {
	if _, err := New("http://rp.local", "token", WithRateLimit(-1, 0)); err == nil {
		t.Error("expected error for negative rate limit")
	}
}

// --- EpochMillis tests ---

func TestEpochMillis_Detection(t *testing.T) {
	var e EpochMillis
	if err := json.Unmarshal([]byte("1722520800000"), &e); err != nil {
		t.Fatal(err)
	}
	if e.Time().Year() != 2024 {
		t.Errorf("millis value decoded to %v", e.Time())
	}

	if err := json.Unmarshal([]byte("1722520800000000"), &e); err != nil {
		t.Fatal(err)
	}
	if e.Time().Year() != 2024 {
		t.Errorf("micros value decoded to %v", e.Time())
	}
}
