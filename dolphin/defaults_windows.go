//go:build windows

package dolphin

import (
	"dolphinmem/process_windows"
)

var defaultProcessNames = []string{
	"Dolphin.exe",
	"DolphinQt2.exe",
	"DolphinWx.exe",
}

func defaultLocator(names []string) Locator {
	return NewProcessLocator(process_windows.NewProcessFinder(), process_windows.NewWithPID, names...)
}

func defaultMappers(v Validator) []RegionMapper {
	return []RegionMapper{
		NewSizeScanMapper(v, true),
		NewPatternScanMapper(v),
	}
}
