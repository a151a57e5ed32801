package evidence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTenantIDColumnPriorityOrder(t *testing.T) {
	frame := NewFrame("tenant.id", "tenant_id", "id")
	frame.Append(map[string]string{"id": "a-1", "tenant_id": "t1", "tenant.id": "t2"})

	column, err := TenantIDColumn(frame)
	if err != nil {
		t.Fatalf("TenantIDColumn() error = %v", err)
	}
	if column != "tenant_id" {
		t.Fatalf("TenantIDColumn() = %q, want tenant_id", column)
	}
}

func TestTenantIDColumnFallbacks(t *testing.T) {
	frame := NewFrame("id", "tenant.id")
	if column, err := TenantIDColumn(frame); err != nil || column != "tenant.id" {
		t.Fatalf("TenantIDColumn() = %q, %v", column, err)
	}

	frame = NewFrame("resource_id", "event_data.tenant_id")
	if column, err := TenantIDColumn(frame); err != nil || column != "event_data.tenant_id" {
		t.Fatalf("TenantIDColumn() = %q, %v", column, err)
	}
}

func TestTenantIDColumnMissing(t *testing.T) {
	frame := NewFrame("id", "severity")
	if _, err := TenantIDColumn(frame); err == nil {
		t.Fatalf("TenantIDColumn() expected error for missing tenant column")
	}
}

func TestIDColumnPerType(t *testing.T) {
	if got := IDColumn(TypeEvent); got != "resource_id" {
		t.Fatalf("IDColumn(event) = %q", got)
	}
	if got := IDColumn(TypeAlert); got != "id" {
		t.Fatalf("IDColumn(alert) = %q", got)
	}
	if got := IDColumn(TypeQuery); got != "id" {
		t.Fatalf("IDColumn(query) = %q", got)
	}
}

func TestLoadFrameFlattensNestedObjects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.json")
	data := `[{"id":"a-1","tenant":{"id":"t1"},"metadata":{"severity":0.7}},{"id":"a-2","tenant":{"id":"t1"}}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	frame, err := LoadFrame(path)
	if err != nil {
		t.Fatalf("LoadFrame() error = %v", err)
	}

	if frame.Len() != 2 {
		t.Fatalf("LoadFrame() rows = %d", frame.Len())
	}
	if !frame.Has("tenant.id") {
		t.Fatalf("LoadFrame() missing flattened tenant.id column, columns = %v", frame.Columns())
	}
	if diff := cmp.Diff([]string{"t1", "t1"}, frame.Column("tenant.id")); diff != "" {
		t.Fatalf("tenant.id column mismatch (-want +got):\n%s", diff)
	}
	if got := frame.Column("metadata.severity"); got[0] != "0.7" {
		t.Fatalf("metadata.severity = %q", got[0])
	}
}

func TestUniqueColumnPreservesFirstSeenOrder(t *testing.T) {
	frame := NewFrame("id")
	for _, id := range []string{"b", "a", "b", "c", "a"} {
		frame.Append(map[string]string{"id": id})
	}

	if diff := cmp.Diff([]string{"b", "a", "c"}, frame.UniqueColumn("id")); diff != "" {
		t.Fatalf("UniqueColumn() mismatch (-want +got):\n%s", diff)
	}
}

func TestFrameRowIsACopy(t *testing.T) {
	frame := NewFrame("id")
	frame.Append(map[string]string{"id": "a-1"})

	row := frame.Row(0)
	row["id"] = "mutated"

	if frame.Column("id")[0] != "a-1" {
		t.Fatalf("Row() must return a copy, stored value = %q", frame.Column("id")[0])
	}
}
