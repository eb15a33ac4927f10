//go:build !linux

package filestore

func openIOURing(dir string) (Store, error) { return nil, ErrUnsupported }

func openURing(dir string) (Store, error) { return nil, ErrUnsupported }
