// Package kerr formats klang's three error kinds (ScannerError, ParserError,
// RuntimeError) into the single-line "[<Kind>] at line <N>: <message>"
// contract shared by every stage of the pipeline.
package kerr

import "github.com/pkg/errors"

const (
	Scanner = "ScannerError"
	Parser  = "ParserError"
	Runtime = "RuntimeError"
)

// Format builds one error line. It goes through errors.Errorf purely for the
// formatting, mirroring how the teacher package builds its diagnostic
// strings with errors.Errorf rather than fmt.Errorf.
func Format(kind string, line int, msg string) string {
	return errors.Errorf("[%s] at line %d: %s", kind, line, msg).Error()
}
