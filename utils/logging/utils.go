package logging

import (
	"runtime"
	"strings"
)

// GetFuncName gets the calling function name for use in context/logging
func GetFuncName() string {
	pc := make([]uintptr, 2)
	n := runtime.Callers(1, pc)
	frames := runtime.CallersFrames(pc[:n])
	frame, _ := frames.Next()
	frame, _ = frames.Next()

	name := frame.Function[strings.LastIndex(frame.Function, "/")+1:]
	flds := strings.Split(name, ".")
	if len(flds) >= 2 {
		return flds[len(flds)-2] + "." + flds[len(flds)-1]
	}

	return name
}
