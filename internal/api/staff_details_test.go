package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iiorcrop/mandi/internal/config"
	"github.com/iiorcrop/mandi/internal/models"
	"github.com/iiorcrop/mandi/internal/ordering"
)

func newTestServer(store Store) *Server {
	return NewServer(config.DefaultConfig(), store, nil, nil)
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestCreateStaffDetail(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		s := newTestServer(newFakeStore())
		rec := doJSON(t, s, "POST", "/api/staff-details", map[string]interface{}{
			"userID": "u1",
			"data":   map[string]interface{}{"department": "Crop Protection"},
		})

		require.Equal(t, http.StatusCreated, rec.Code)

		var detail models.StaffDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
		assert.Equal(t, "u1", detail.UserID)
		assert.Equal(t, 1, detail.SchemaVersion)
	})

	t.Run("MissingUserID", func(t *testing.T) {
		s := newTestServer(newFakeStore())
		rec := doJSON(t, s, "POST", "/api/staff-details", map[string]interface{}{
			"data": map[string]interface{}{"department": "Crop Protection"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("DataNotAnObject", func(t *testing.T) {
		s := newTestServer(newFakeStore())
		rec := doJSON(t, s, "POST", "/api/staff-details", map[string]interface{}{
			"userID": "u1",
			"data":   []int{1, 2, 3},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("DataMissing", func(t *testing.T) {
		s := newTestServer(newFakeStore())
		rec := doJSON(t, s, "POST", "/api/staff-details", map[string]interface{}{
			"userID": "u1",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetStaffDetailByUser(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(store)

	t.Run("NotFound", func(t *testing.T) {
		rec := doJSON(t, s, "GET", "/api/staff-details/user/does-not-exist", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Staff detail not found."}`, rec.Body.String())
	})

	t.Run("Found", func(t *testing.T) {
		created := doJSON(t, s, "POST", "/api/staff-details", map[string]interface{}{
			"userID": "u7",
			"data":   map[string]interface{}{},
		})
		require.Equal(t, http.StatusCreated, created.Code)

		rec := doJSON(t, s, "GET", "/api/staff-details/user/u7", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestReorderStaffDetails(t *testing.T) {
	seed := func(t *testing.T, store *fakeStore, n int) []string {
		t.Helper()
		ids := make([]string, 0, n)
		for i := 0; i < n; i++ {
			detail, err := store.CreateStaffDetail(context.Background(), fmt.Sprintf("user-%d", i), []byte(`{}`))
			require.NoError(t, err)
			detail.Position = 100 + i // pre-existing rank outside the reorder range
			ids = append(ids, detail.ID)
		}
		return ids
	}

	t.Run("MissingDepartment", func(t *testing.T) {
		s := newTestServer(newFakeStore())
		rec := doJSON(t, s, "PUT", "/api/staff-details/reorder", map[string]interface{}{
			"ids": []string{"a"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("IDsNotAnArray", func(t *testing.T) {
		s := newTestServer(newFakeStore())
		rec := doJSON(t, s, "PUT", "/api/staff-details/reorder", map[string]interface{}{
			"department": "Crop Protection",
			"ids":        "a,b,c",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("AssignsContiguousPositions", func(t *testing.T) {
		store := newFakeStore()
		s := newTestServer(store)
		ids := seed(t, store, 3)

		rec := doJSON(t, s, "PUT", "/api/staff-details/reorder", map[string]interface{}{
			"department": "Crop Protection",
			"ids":        []string{ids[2], ids[0], ids[1]},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, 0, store.details[ids[2]].Position)
		assert.Equal(t, 1, store.details[ids[0]].Position)
		assert.Equal(t, 2, store.details[ids[1]].Position)
		// No division supplied, so subpositions reset
		assert.Equal(t, 0, store.details[ids[0]].Subposition)
	})

	t.Run("Idempotent", func(t *testing.T) {
		store := newFakeStore()
		s := newTestServer(store)
		ids := seed(t, store, 3)

		body := map[string]interface{}{
			"department": "Crop Protection",
			"ids":        ids,
		}
		for i := 0; i < 2; i++ {
			rec := doJSON(t, s, "PUT", "/api/staff-details/reorder", body)
			require.Equal(t, http.StatusOK, rec.Code)
		}

		for i, id := range ids {
			assert.Equal(t, i, store.details[id].Position)
		}
	})

	t.Run("PartialScopeLeavesOthersUntouched", func(t *testing.T) {
		store := newFakeStore()
		s := newTestServer(store)
		ids := seed(t, store, 4)
		untouched := ids[3]
		before := store.details[untouched].Position

		rec := doJSON(t, s, "PUT", "/api/staff-details/reorder", map[string]interface{}{
			"department": "Crop Protection",
			"ids":        ids[:3],
		})
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, before, store.details[untouched].Position)
	})

	t.Run("DivisionScopedAssignsSubpositions", func(t *testing.T) {
		store := newFakeStore()
		s := newTestServer(store)
		ids := seed(t, store, 2)

		rec := doJSON(t, s, "PUT", "/api/staff-details/reorder", map[string]interface{}{
			"department": "Crop Protection",
			"division":   "Entomology",
			"ids":        ids,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, 1, store.details[ids[1]].Position)
		assert.Equal(t, 1, store.details[ids[1]].Subposition)
	})

	t.Run("ReportsMissingIDs", func(t *testing.T) {
		store := newFakeStore()
		s := newTestServer(store)
		ids := seed(t, store, 1)

		rec := doJSON(t, s, "PUT", "/api/staff-details/reorder", map[string]interface{}{
			"department": "Crop Protection",
			"ids":        []string{ids[0], "ghost"},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var result ordering.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, []string{ids[0]}, result.Matched)
		assert.Equal(t, []string{"ghost"}, result.Missing)
	})
}

func TestUpdateAndDeleteStaffDetail(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(store)

	detail, err := store.CreateStaffDetail(context.Background(), "u1", []byte(`{"department":"Genetics"}`))
	require.NoError(t, err)

	t.Run("UpdateFound", func(t *testing.T) {
		rec := doJSON(t, s, "PUT", "/api/staff-details/"+detail.ID, map[string]interface{}{
			"data": map[string]interface{}{"department": "Plant Pathology"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("UpdateNotFound", func(t *testing.T) {
		rec := doJSON(t, s, "PUT", "/api/staff-details/nope", map[string]interface{}{
			"data": map[string]interface{}{},
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("DeleteFound", func(t *testing.T) {
		rec := doJSON(t, s, "DELETE", "/api/staff-details/"+detail.ID, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("DeleteNotFound", func(t *testing.T) {
		rec := doJSON(t, s, "DELETE", "/api/staff-details/"+detail.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
