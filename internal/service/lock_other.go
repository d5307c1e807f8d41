//go:build !windows

package service

func isSharingViolation(error) bool { return false }
