package stdoutwriter

import "fmt"

// Logger writes each log record to the standard output.
type Logger struct{}

func (l Logger) Write(p []byte) (n int, err error) {
	fmt.Println(string(p))
	return len(p), nil
}
