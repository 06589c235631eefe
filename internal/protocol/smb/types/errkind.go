package types

// ErrorKind classifies NT_STATUS failure codes into coarse categories that
// callers can branch on without memorizing raw status values.
type ErrorKind int

const (
	// KindProtocol is the catch-all for failures with no narrower category.
	KindProtocol ErrorKind = iota
	KindNotFound
	KindAccessDenied
	KindNameCollision
	KindSharingViolation
	KindInvalidHandle
	KindInvalidParameter
	KindNotSupported
	KindEndOfFile
	KindNoMoreFiles
	KindBufferShort
	KindDirectoryNotEmpty
	KindNotADirectory
	KindIsADirectory
	KindBadNetworkName
	KindSessionExpired
	KindLogonFailure
	KindDeletePending
	KindLockConflict
	KindDiskFull
	KindCancelled
	KindInsufficientResources
)

// String returns the category name
func (k ErrorKind) String() string {
	switch k {
	case KindProtocol:
		return "protocol"
	case KindNotFound:
		return "not-found"
	case KindAccessDenied:
		return "access-denied"
	case KindNameCollision:
		return "name-collision"
	case KindSharingViolation:
		return "sharing-violation"
	case KindInvalidHandle:
		return "invalid-handle"
	case KindInvalidParameter:
		return "invalid-parameter"
	case KindNotSupported:
		return "not-supported"
	case KindEndOfFile:
		return "end-of-file"
	case KindNoMoreFiles:
		return "no-more-files"
	case KindBufferShort:
		return "buffer-short"
	case KindDirectoryNotEmpty:
		return "directory-not-empty"
	case KindNotADirectory:
		return "not-a-directory"
	case KindIsADirectory:
		return "is-a-directory"
	case KindBadNetworkName:
		return "bad-network-name"
	case KindSessionExpired:
		return "session-expired"
	case KindLogonFailure:
		return "logon-failure"
	case KindDeletePending:
		return "delete-pending"
	case KindLockConflict:
		return "lock-conflict"
	case KindDiskFull:
		return "disk-full"
	case KindCancelled:
		return "cancelled"
	case KindInsufficientResources:
		return "insufficient-resources"
	default:
		return "unknown"
	}
}

// statusKinds maps individual NT_STATUS codes to a category. Codes absent
// from the table fall back to KindProtocol so that servers returning
// statuses we have never seen still surface as ordinary per-call failures.
var statusKinds = map[uint32]ErrorKind{
	StatusNoSuchFile:            KindNotFound,
	StatusObjectNameNotFound:    KindNotFound,
	StatusObjectPathNotFound:    KindNotFound,
	StatusNetworkNameDeleted:    KindNotFound,
	StatusAccessDenied:          KindAccessDenied,
	StatusObjectNameCollision:   KindNameCollision,
	StatusSharingViolation:      KindSharingViolation,
	StatusInvalidHandle:         KindInvalidHandle,
	StatusFileClosed:            KindInvalidHandle,
	StatusInvalidParameter:      KindInvalidParameter,
	StatusObjectNameInvalid:     KindInvalidParameter,
	StatusInvalidInfoClass:      KindInvalidParameter,
	StatusNotSupported:          KindNotSupported,
	StatusNotImplemented:        KindNotSupported,
	StatusInvalidDeviceRequest:  KindNotSupported,
	StatusEndOfFile:             KindEndOfFile,
	StatusNoMoreFiles:           KindNoMoreFiles,
	StatusBufferTooSmall:        KindBufferShort,
	StatusBufferOverflow:        KindBufferShort,
	StatusDirectoryNotEmpty:     KindDirectoryNotEmpty,
	StatusNotADirectory:         KindNotADirectory,
	StatusFileIsADirectory:      KindIsADirectory,
	StatusBadNetworkName:        KindBadNetworkName,
	StatusUserSessionDeleted:    KindSessionExpired,
	StatusNetworkSessionExpired: KindSessionExpired,
	StatusLogonFailure:          KindLogonFailure,
	StatusPasswordExpired:       KindLogonFailure,
	StatusAccountDisabled:       KindLogonFailure,
	StatusDeletePending:         KindDeletePending,
	StatusFileLockConflict:      KindLockConflict,
	StatusLockNotGranted:        KindLockConflict,
	StatusDiskFull:              KindDiskFull,
	StatusQuotaExceeded:         KindDiskFull,
	StatusCancelled:             KindCancelled,
	StatusInsufficientResources: KindInsufficientResources,
	StatusRequestNotAccepted:    KindInsufficientResources,
}

// MapStatus categorizes a failing NT_STATUS code. The raw code is always
// preserved alongside the category by the caller; this mapping never loses
// information, it only adds a coarse label.
func MapStatus(status uint32) ErrorKind {
	if kind, ok := statusKinds[status]; ok {
		return kind
	}
	return KindProtocol
}
