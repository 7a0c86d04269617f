package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryService is an in-process RecordService. It hands out numeric ids and
// RFC 3339 CreatedOn stamps the way hosted record services do, which makes it
// useful for offline runs and tests.
type MemoryService struct {
	mu       sync.Mutex
	next     int
	now      func() time.Time
	data     map[string][]Record
	failures map[string]error
	calls    map[string]int
}

// stampLayout is RFC 3339 with fixed-width fractions so stamps sort as text.
const stampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// NewMemoryService returns an empty service.
func NewMemoryService() *MemoryService {
	return &MemoryService{
		now:      time.Now,
		data:     map[string][]Record{},
		failures: map[string]error{},
		calls:    map[string]int{},
	}
}

// FailNext makes the next call to method ("fetch", "create", "update" or
// "delete") return err.
func (m *MemoryService) FailNext(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[method] = err
}

// Calls reports how many times method has been invoked.
func (m *MemoryService) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// Put stores a raw record as-is, bypassing id and timestamp assignment.
func (m *MemoryService) Put(collection string, rec Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[collection] = append(m.data[collection], copyRecord(rec))
}

func (m *MemoryService) enter(method string) error {
	m.calls[method]++
	if err, ok := m.failures[method]; ok {
		delete(m.failures, method)
		return err
	}
	return nil
}

func (m *MemoryService) FetchRecords(_ context.Context, collection string, params FetchParams) (*FetchResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("fetch"); err != nil {
		return nil, err
	}

	recs := make([]Record, len(m.data[collection]))
	copy(recs, m.data[collection])
	for _, o := range params.OrderBy {
		field, desc := o.Field, o.Direction == "DESC"
		sort.SliceStable(recs, func(i, j int) bool {
			a, b := fmt.Sprint(recs[i][field]), fmt.Sprint(recs[j][field])
			if desc {
				return a > b
			}
			return a < b
		})
	}

	out := make([]json.RawMessage, 0, len(recs))
	for _, r := range recs {
		b, err := json.Marshal(project(r, params.Fields))
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return &FetchResponse{Success: true, Data: out}, nil
}

func (m *MemoryService) CreateRecord(_ context.Context, collection string, records []Record) (*MutationResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("create"); err != nil {
		return nil, err
	}

	resp := &MutationResponse{Success: true}
	for _, in := range records {
		m.next++
		rec := copyRecord(in)
		rec["Id"] = m.next
		rec["CreatedOn"] = m.now().UTC().Format(stampLayout)
		m.data[collection] = append(m.data[collection], rec)

		b, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		resp.Results = append(resp.Results, RecordResult{Success: true, Data: b})
	}
	return resp, nil
}

func (m *MemoryService) UpdateRecord(_ context.Context, collection string, records []Record) (*MutationResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("update"); err != nil {
		return nil, err
	}

	resp := &MutationResponse{Success: true}
	for _, in := range records {
		id := fmt.Sprint(in["Id"])
		i := m.indexOf(collection, id)
		if i < 0 {
			resp.Success = false
			resp.Results = append(resp.Results, RecordResult{Message: "record " + id + " not found"})
			continue
		}
		rec := m.data[collection][i]
		for k, v := range in {
			if k != "Id" {
				rec[k] = v
			}
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		resp.Results = append(resp.Results, RecordResult{Success: true, Data: b})
	}
	return resp, nil
}

func (m *MemoryService) DeleteRecord(_ context.Context, collection string, ids []string) (*DeleteResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("delete"); err != nil {
		return nil, err
	}

	found := 0
	for _, id := range ids {
		if i := m.indexOf(collection, id); i >= 0 {
			recs := m.data[collection]
			m.data[collection] = append(recs[:i:i], recs[i+1:]...)
			found++
		}
	}
	if found != len(ids) {
		return &DeleteResponse{Success: false, Message: "some records were not found"}, nil
	}
	return &DeleteResponse{Success: true}, nil
}

func (m *MemoryService) Close() error { return nil }

func (m *MemoryService) indexOf(collection, id string) int {
	for i, r := range m.data[collection] {
		if fmt.Sprint(r["Id"]) == id {
			return i
		}
	}
	return -1
}

func project(r Record, fields []string) Record {
	if len(fields) == 0 {
		return r
	}
	out := Record{}
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}

func copyRecord(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
