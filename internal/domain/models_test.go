package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Solution{}, &Item{}, &Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	if (Solution{}).TableName() != "solutions" {
		t.Fatalf("Solution.TableName() = %q", (Solution{}).TableName())
	}
	if (Item{}).TableName() != "items" {
		t.Fatalf("Item.TableName() = %q", (Item{}).TableName())
	}
	if (Idempotency{}).TableName() != "idempotency_keys" {
		t.Fatalf("Idempotency.TableName() = %q", (Idempotency{}).TableName())
	}
}

func TestSolutionDocID(t *testing.T) {
	if got := SolutionDocID("42", "alice"); got != "42_alice" {
		t.Fatalf("SolutionDocID = %q; want 42_alice", got)
	}
}

func TestMigrations_Indexes(t *testing.T) {
	db := newDomainDB(t)
	m := db.Migrator()
	if !m.HasIndex(&Solution{}, "idx_solutions_problem_created") {
		t.Fatalf("expected idx_solutions_problem_created on solutions")
	}
	if !m.HasIndex(&Idempotency{}, "ux_idempotency_key") {
		t.Fatalf("expected ux_idempotency_key on idempotency_keys")
	}
}

func TestSolution_JSONShape(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := Solution{DocID: "p_u", ProblemID: "p", Username: "u", SolutionLink: "https://x", CreatedAt: ts, UpdatedAt: ts}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(b)
	for _, k := range []string{`"problemId":"p"`, `"username":"u"`, `"solutionLink":"https://x"`, `"createdAt"`, `"updatedAt"`} {
		if !strings.Contains(out, k) {
			t.Fatalf("missing %s in %s", k, out)
		}
	}
	if strings.Contains(out, "p_u") {
		t.Fatalf("doc id must not be serialized: %s", out)
	}

	sum, _ := json.Marshal(s.Summary())
	if strings.Contains(string(sum), "problemId") || strings.Contains(string(sum), "updatedAt") {
		t.Fatalf("summary leaks fields: %s", sum)
	}
}

func TestItem_DataNullAndPayloadRoundTrip(t *testing.T) {
	db := newDomainDB(t)

	bare := &Item{Name: "bare", CreatedAt: time.Now().UTC()}
	withData := &Item{Name: "rich", Data: datatypes.JSON(`{"k":[1,2,3]}`), CreatedAt: time.Now().UTC()}
	if err := db.Create(bare).Error; err != nil {
		t.Fatalf("create bare: %v", err)
	}
	if err := db.Create(withData).Error; err != nil {
		t.Fatalf("create rich: %v", err)
	}
	if bare.ID == 0 || withData.ID <= bare.ID {
		t.Fatalf("ids not generated monotonically: %d %d", bare.ID, withData.ID)
	}

	var got Item
	if err := db.First(&got, bare.ID).Error; err != nil {
		t.Fatalf("read bare: %v", err)
	}
	b, _ := json.Marshal(got)
	if !strings.Contains(string(b), `"data":null`) {
		t.Fatalf("expected data:null, got %s", b)
	}

	var rich Item
	if err := db.First(&rich, withData.ID).Error; err != nil {
		t.Fatalf("read rich: %v", err)
	}
	b, _ = json.Marshal(rich)
	if !strings.Contains(string(b), `"data":{"k":[1,2,3]}`) {
		t.Fatalf("payload not preserved: %s", b)
	}
}
