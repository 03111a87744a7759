//go:build windows

package cachefs

import "golang.org/x/sys/windows"

func diskFreeBytes(dir string) (uint64, error) {
	var freeBytesAvailable uint64
	path, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return 0, err
	}
	if err := windows.GetDiskFreeSpaceEx(path, &freeBytesAvailable, nil, nil); err != nil {
		return 0, err
	}
	return freeBytesAvailable, nil
}
