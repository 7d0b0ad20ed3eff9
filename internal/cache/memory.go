package cache

import "context"

// Memory is a process-local Store. It is used for the memory driver and in tests.
type Memory struct {
	records []Record
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Insert(_ context.Context, name string, body []byte) error {
	m.records = append(m.records, Record{Name: name, Body: string(body), CreatedAt: now()})
	return nil
}

func (m *Memory) Exists(ctx context.Context, name string) (bool, error) {
	_, ok, err := m.FirstMatch(ctx, name)
	return ok, err
}

func (m *Memory) FirstMatch(_ context.Context, name string) ([]byte, bool, error) {
	for _, rec := range m.records {
		if rec.Name == name {
			return []byte(rec.Body), true, nil
		}
	}
	return nil, false, nil
}

func (m *Memory) Count(_ context.Context, name string) (int, error) {
	n := 0
	for _, rec := range m.records {
		if rec.Name == name {
			n++
		}
	}
	return n, nil
}

func (m *Memory) Close() error {
	return nil
}
