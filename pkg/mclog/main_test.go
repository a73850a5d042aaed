package mclog_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/gluemc/gluemc-go/pkg/mclog/lang"
)

// TestMain installs the test templates once; the installed table is
// process-wide and write-once.
func TestMain(m *testing.M) {
	table, err := lang.Load("testdata/en_us.json")
	if err != nil {
		fmt.Fprintln(os.Stderr, "loading test templates:", err)
		os.Exit(1)
	}
	if err := lang.Install(table); err != nil {
		fmt.Fprintln(os.Stderr, "installing test templates:", err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}
