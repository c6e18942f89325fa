//go:build linux

package dolphin

import (
	"dolphinmem/process_linux"
)

var defaultProcessNames = []string{
	"dolphin-emu",
	"dolphin-emu-qt2",
	"dolphin-emu-wx",
	"dolphin-emu-nogui",
}

func defaultLocator(names []string) Locator {
	return NewProcessLocator(process_linux.NewProcessFinder(), process_linux.NewWithPID, names...)
}

func defaultMappers(v Validator) []RegionMapper {
	return []RegionMapper{
		NewSharedMemoryMapper(v),
		NewSizeScanMapper(v, true),
		NewPatternScanMapper(v),
	}
}
