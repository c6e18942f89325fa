//go:build !linux && !windows

package dolphin

import (
	"fmt"
	"runtime"

	"dolphinmem/process"
)

var defaultProcessNames = []string{"Dolphin"}

type unsupportedLocator struct{}

func (unsupportedLocator) Locate() (process.Process, error) {
	return nil, fmt.Errorf("%w: no process backend for %s", ErrProcessNotFound, runtime.GOOS)
}

func (unsupportedLocator) IsAlive(proc process.Process) bool {
	return proc != nil && proc.IsAlive()
}

func defaultLocator(names []string) Locator {
	return unsupportedLocator{}
}

func defaultMappers(v Validator) []RegionMapper {
	return []RegionMapper{
		NewSizeScanMapper(v, false),
		NewPatternScanMapper(v),
	}
}
