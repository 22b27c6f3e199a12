package transpiler_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/harmony-labs/highrust/internal/transpiler"
)

var update = flag.Bool("update", false, "update snapshot files")

// TestGolden transpiles a fixture set of HRS programs and compares the
// emitted RS text against snapshot files under testdata/. Run with -update
// to regenerate them after an intentional emission change.
func TestGolden(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"hello_world", "fn main() {\n    println(\"Hello, World!\");\n}"},
		{"mutable_borrow", "fn test_mutable_borrow(v) {\n    v.push(1);\n    v.push(2);\n}"},
		{"move_with_copy", "fn f() {\n    let s = \"hello\".to_string();\n    let t = s;\n    let u: String = s;\n}"},
		{"propagation", "fn wrapper() -> Result<i32, String> {\n    let v = get_val()?;\n    return v;\n}"},
		{"lifetime_inference", "fn get_ref(x: &i32) -> &i32 { return x; }"},
		{"data_definitions", "data Point { x: i32, y: i32 }\nenum Shape { Circle { r: i32 }, Square }"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := transpiler.TranspileSource(tc.input)
			if err != nil {
				t.Fatalf("transpile failed: %v", err)
			}

			snapshotFile := filepath.Join("testdata", tc.name+".snap")

			if *update {
				if err := os.WriteFile(snapshotFile, []byte(actual), 0644); err != nil {
					t.Fatalf("failed to update snapshot: %v", err)
				}
				return
			}

			expected, err := os.ReadFile(snapshotFile)
			if err != nil {
				t.Fatalf("failed to read snapshot file: %v. Run with -update flag to create it.", err)
			}

			if string(expected) != actual {
				t.Errorf("snapshot mismatch:\n--- expected\n%s\n--- actual\n%s", string(expected), actual)
			}
		})
	}
}
