package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/xabinapal/outlinectl/internal/config"
	"github.com/xabinapal/outlinectl/internal/outline"
)

// fakeKeyClient records calls so command tests can assert on the single
// remote operation each command performs.
type fakeKeyClient struct {
	keys []outline.AccessKey
	err  error

	created     *outline.AccessKey
	createName  string
	deletedID   int
	renamedID   int
	renamedName string
	limitID     int
	limitBytes  int64
	limitSet    bool
	clearedID   int
	cleared     bool
}

func (f *fakeKeyClient) Keys(ctx context.Context) ([]outline.AccessKey, error) {
	return f.keys, f.err
}

func (f *fakeKeyClient) GetKey(ctx context.Context, id int) (*outline.AccessKey, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := strconv.Itoa(id)
	for i := range f.keys {
		if f.keys[i].ID == want {
			return &f.keys[i], nil
		}
	}
	return nil, outline.ErrKeyNotFound
}

func (f *fakeKeyClient) CreateKey(ctx context.Context, name string) (*outline.AccessKey, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.createName = name
	f.created = &outline.AccessKey{ID: "7", Name: name, AccessURL: "ss://new@host:1/?outline=1"}
	return f.created, nil
}

func (f *fakeKeyClient) DeleteKey(ctx context.Context, id int) error {
	f.deletedID = id
	return f.err
}

func (f *fakeKeyClient) RenameKey(ctx context.Context, id int, name string) error {
	f.renamedID = id
	f.renamedName = name
	return f.err
}

func (f *fakeKeyClient) SetDataLimit(ctx context.Context, id int, bytes int64) error {
	f.limitID = id
	f.limitBytes = bytes
	f.limitSet = true
	return f.err
}

func (f *fakeKeyClient) ClearDataLimit(ctx context.Context, id int) error {
	f.clearedID = id
	f.cleared = true
	return f.err
}

func (f *fakeKeyClient) Server(ctx context.Context) (*outline.ServerInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &outline.ServerInfo{Name: "fake", Version: "1.0.0"}, nil
}

// seedStore points the config dir at a temp dir and optionally saves
// profiles into it.
func seedStore(t *testing.T, profiles ...string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("OUTLINE_CONFIG_DIR", dir)

	if len(profiles) > 0 {
		store, err := config.LoadFrom(filepath.Join(dir, config.ConfigFileName))
		if err != nil {
			t.Fatal(err)
		}
		for _, name := range profiles {
			store.Set(name, "https://198.51.100.7:8081/"+name, strings.Repeat("ab", 32))
		}
		if err := store.Save(); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// runCommand executes one CLI invocation against a fake client.
func runCommand(t *testing.T, fake keyClient, stdin string, args ...string) (string, error) {
	t.Helper()
	c := New()
	var buf bytes.Buffer
	c.stdout = &buf
	c.stdin = strings.NewReader(stdin)
	c.newClient = func(apiURL, certSHA256 string) (keyClient, error) {
		return fake, nil
	}
	c.rootCmd.SetArgs(args)
	err := c.Execute(context.Background())
	return buf.String(), err
}

func TestListTable(t *testing.T) {
	seedStore(t, "default")
	fake := &fakeKeyClient{keys: []outline.AccessKey{
		{ID: "1", AccessURL: "ss://a@host:1/?outline=1", UsedBytes: 5242880},
		{ID: "2", Name: "a-very-long-key-name-here",
			AccessURL: "ss://YWVzLTE5Mi1jZmI6a2V5@198.51.100.7:12345/?outline=1"},
	}}

	out, err := runCommand(t, fake, "", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if !strings.Contains(out, "ID") || !strings.Contains(out, "Usage (MB)") {
		t.Errorf("missing table header in output:\n%s", out)
	}
	if !strings.Contains(out, "(unnamed)") {
		t.Errorf("unnamed key should get a placeholder:\n%s", out)
	}
	if !strings.Contains(out, "5.0") {
		t.Errorf("5242880 bytes should display as 5.0 MB:\n%s", out)
	}
	if !strings.Contains(out, "a-very-long-key-n…") {
		t.Errorf("long name should be truncated with ellipsis:\n%s", out)
	}
	if !strings.Contains(out, "ss://YWVzLTE5Mi1jZmI6a2V5@198.51.100....\n") {
		t.Errorf("long access URL should be truncated to 37 chars plus ellipsis:\n%s", out)
	}
}

func TestListEmpty(t *testing.T) {
	seedStore(t, "default")
	fake := &fakeKeyClient{}

	out, err := runCommand(t, fake, "", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "No access keys found") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestListJSON(t *testing.T) {
	seedStore(t, "default")
	fake := &fakeKeyClient{keys: []outline.AccessKey{
		{ID: "1", Name: "laptop", AccessURL: "ss://a@host:1", UsedBytes: 1048576},
	}}

	out, err := runCommand(t, fake, "", "list", "-o", "json")
	if err != nil {
		t.Fatalf("list -o json failed: %v", err)
	}
	if !strings.Contains(out, `"used_bytes": 1048576`) {
		t.Errorf("unexpected JSON output:\n%s", out)
	}
}

func TestShow(t *testing.T) {
	seedStore(t, "default")
	fake := &fakeKeyClient{keys: []outline.AccessKey{
		{ID: "1", Name: "laptop", AccessURL: "ss://a@host:1", UsedBytes: 5242880,
			DataLimitBytes: 10485760},
	}}

	out, err := runCommand(t, fake, "", "show", "1")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	for _, want := range []string{"ID:         1", "Name:       laptop", "Usage:      5.0 MB",
		"Access URL: ss://a@host:1", "Data Limit: 10.0 MB"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestShowNotFound(t *testing.T) {
	seedStore(t, "default")
	fake := &fakeKeyClient{}

	_, err := runCommand(t, fake, "", "show", "9")
	if err == nil {
		t.Fatal("expected error for missing key")
	}
	if IsUsageError(err) {
		t.Error("a missing key is a runtime error, not a usage error")
	}
}

func TestShowInvalidID(t *testing.T) {
	seedStore(t, "default")

	_, err := runCommand(t, &fakeKeyClient{}, "", "show", "abc")
	if !IsUsageError(err) {
		t.Errorf("expected usage error for non-numeric ID, got %v", err)
	}
}

func TestAddPositionalName(t *testing.T) {
	seedStore(t, "default")
	fake := &fakeKeyClient{}

	out, err := runCommand(t, fake, "", "add", "laptop")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if fake.createName != "laptop" {
		t.Errorf("expected create with name laptop, got %q", fake.createName)
	}
	if !strings.Contains(out, "Created key: 7 - laptop") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestAddFlagNameWins(t *testing.T) {
	seedStore(t, "default")
	fake := &fakeKeyClient{}

	if _, err := runCommand(t, fake, "", "add", "positional", "--name", "flagged"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if fake.createName != "flagged" {
		t.Errorf("flag name should win, got %q", fake.createName)
	}
}

func TestAddUnnamed(t *testing.T) {
	seedStore(t, "default")
	fake := &fakeKeyClient{}

	out, err := runCommand(t, fake, "", "add")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if fake.createName != "" {
		t.Errorf("expected empty name, got %q", fake.createName)
	}
	if !strings.Contains(out, "(unnamed)") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestDelete(t *testing.T) {
	seedStore(t, "default")
	fake := &fakeKeyClient{}

	out, err := runCommand(t, fake, "", "delete", "3")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if fake.deletedID != 3 {
		t.Errorf("expected delete of key 3, got %d", fake.deletedID)
	}
	if !strings.Contains(out, "Deleted key: 3") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRename(t *testing.T) {
	seedStore(t, "default")
	fake := &fakeKeyClient{}

	out, err := runCommand(t, fake, "", "rename", "2", "Work iPhone")
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if fake.renamedID != 2 || fake.renamedName != "Work iPhone" {
		t.Errorf("unexpected rename call: id=%d name=%q", fake.renamedID, fake.renamedName)
	}
	if !strings.Contains(out, "Renamed key 2 to: Work iPhone") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestLimitSetsExactBytes(t *testing.T) {
	seedStore(t, "default")
	fake := &fakeKeyClient{}

	out, err := runCommand(t, fake, "", "limit", "1", "10")
	if err != nil {
		t.Fatalf("limit failed: %v", err)
	}
	if !fake.limitSet || fake.limitID != 1 {
		t.Fatal("expected SetDataLimit to be called")
	}
	if fake.limitBytes != 10485760 {
		t.Errorf("limit 10 MB must send exactly 10485760 bytes, got %d", fake.limitBytes)
	}
	if fake.cleared {
		t.Error("ClearDataLimit must not be called for a nonzero limit")
	}
	if !strings.Contains(out, "Set limit for key 1: 10 MB") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestLimitZeroClears(t *testing.T) {
	seedStore(t, "default")
	fake := &fakeKeyClient{}

	out, err := runCommand(t, fake, "", "limit", "1", "0")
	if err != nil {
		t.Fatalf("limit 0 failed: %v", err)
	}
	if !fake.cleared || fake.clearedID != 1 {
		t.Fatal("expected ClearDataLimit to be called for limit 0")
	}
	if fake.limitSet {
		t.Error("SetDataLimit must not be called for limit 0")
	}
	if !strings.Contains(out, "Removed limit for key 1") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestLimitInvalidValues(t *testing.T) {
	seedStore(t, "default")

	if _, err := runCommand(t, &fakeKeyClient{}, "", "limit", "1", "lots"); !IsUsageError(err) {
		t.Errorf("expected usage error for non-numeric limit, got %v", err)
	}
	if _, err := runCommand(t, &fakeKeyClient{}, "", "limit", "1", "-5"); !IsUsageError(err) {
		t.Errorf("expected usage error for negative limit, got %v", err)
	}
	if _, err := runCommand(t, &fakeKeyClient{}, "", "limit", "1"); !IsUsageError(err) {
		t.Errorf("expected usage error for missing limit argument, got %v", err)
	}
}
