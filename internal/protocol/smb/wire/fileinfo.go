package wire

import (
	"encoding/binary"
	"time"

	"github.com/marmos91/smbcore/internal/protocol/smb/types"
)

// DirEntry is one directory listing entry decoded from a QUERY_DIRECTORY
// output buffer using FileIdBothDirectoryInformation.
type DirEntry struct {
	FileName       string
	FileID         uint64
	CreationTime   time.Time
	LastAccessTime time.Time
	LastWriteTime  time.Time
	ChangeTime     time.Time
	EndOfFile      uint64
	AllocationSize uint64
	FileAttributes uint32
}

// IsDir reports whether the entry describes a directory
func (e *DirEntry) IsDir() bool {
	return e.FileAttributes&types.FileAttributeDirectory != 0
}

// fileIdBothDirInfoFixed is the fixed part of FileIdBothDirectoryInformation
// before the variable-length FileName. [MS-FSCC] 2.4.17
const fileIdBothDirInfoFixed = 104

// DecodeFileIdBothDirectoryInfo walks a chain of
// FileIdBothDirectoryInformation records linked by NextEntryOffset and
// returns the decoded entries.
func DecodeFileIdBothDirectoryInfo(data []byte) ([]DirEntry, error) {
	var entries []DirEntry
	offset := 0

	for {
		if offset+fileIdBothDirInfoFixed > len(data) {
			return nil, newDecodeError("directory entry truncated", offset, len(data)-offset)
		}
		rec := data[offset:]

		nameLength := int(binary.LittleEndian.Uint32(rec[60:64]))
		if offset+fileIdBothDirInfoFixed+nameLength > len(data) {
			return nil, newDecodeError("directory entry name truncated", offset+60, 4)
		}

		entries = append(entries, DirEntry{
			CreationTime:   types.FiletimeToTime(binary.LittleEndian.Uint64(rec[8:16])),
			LastAccessTime: types.FiletimeToTime(binary.LittleEndian.Uint64(rec[16:24])),
			LastWriteTime:  types.FiletimeToTime(binary.LittleEndian.Uint64(rec[24:32])),
			ChangeTime:     types.FiletimeToTime(binary.LittleEndian.Uint64(rec[32:40])),
			EndOfFile:      binary.LittleEndian.Uint64(rec[40:48]),
			AllocationSize: binary.LittleEndian.Uint64(rec[48:56]),
			FileAttributes: binary.LittleEndian.Uint32(rec[56:60]),
			FileID:         binary.LittleEndian.Uint64(rec[96:104]),
			FileName:       decodeUTF16LE(rec[fileIdBothDirInfoFixed : fileIdBothDirInfoFixed+nameLength]),
		})

		next := int(binary.LittleEndian.Uint32(rec[0:4]))
		if next == 0 {
			return entries, nil
		}
		if next < fileIdBothDirInfoFixed || offset+next > len(data) {
			return nil, newDecodeError("directory entry chain broken", offset, 4)
		}
		offset += next
	}
}

// FileBasicInfo is the FileBasicInformation block [MS-FSCC] 2.4.7
type FileBasicInfo struct {
	CreationTime   time.Time
	LastAccessTime time.Time
	LastWriteTime  time.Time
	ChangeTime     time.Time
	FileAttributes uint32
}

// DecodeFileBasicInfo parses a FileBasicInformation block (40 bytes)
func DecodeFileBasicInfo(data []byte) (*FileBasicInfo, error) {
	if len(data) < 36 {
		return nil, newDecodeError("FileBasicInformation too short", 0, len(data))
	}
	return &FileBasicInfo{
		CreationTime:   types.FiletimeToTime(binary.LittleEndian.Uint64(data[0:8])),
		LastAccessTime: types.FiletimeToTime(binary.LittleEndian.Uint64(data[8:16])),
		LastWriteTime:  types.FiletimeToTime(binary.LittleEndian.Uint64(data[16:24])),
		ChangeTime:     types.FiletimeToTime(binary.LittleEndian.Uint64(data[24:32])),
		FileAttributes: binary.LittleEndian.Uint32(data[32:36]),
	}, nil
}

// FileStandardInfo is the FileStandardInformation block [MS-FSCC] 2.4.41
type FileStandardInfo struct {
	AllocationSize uint64
	EndOfFile      uint64
	NumberOfLinks  uint32
	DeletePending  bool
	Directory      bool
}

// DecodeFileStandardInfo parses a FileStandardInformation block (24 bytes)
func DecodeFileStandardInfo(data []byte) (*FileStandardInfo, error) {
	if len(data) < 22 {
		return nil, newDecodeError("FileStandardInformation too short", 0, len(data))
	}
	return &FileStandardInfo{
		AllocationSize: binary.LittleEndian.Uint64(data[0:8]),
		EndOfFile:      binary.LittleEndian.Uint64(data[8:16]),
		NumberOfLinks:  binary.LittleEndian.Uint32(data[16:20]),
		DeletePending:  data[20] != 0,
		Directory:      data[21] != 0,
	}, nil
}

// EncodeFileEndOfFileInfo builds a FileEndOfFileInformation block for
// SET_INFO truncate and extend operations. [MS-FSCC] 2.4.13
func EncodeFileEndOfFileInfo(endOfFile uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, endOfFile)
	return buf
}

// EncodeFileDispositionInfo builds a FileDispositionInformation block used
// to mark an open handle delete-on-close. [MS-FSCC] 2.4.11
func EncodeFileDispositionInfo(deletePending bool) []byte {
	buf := make([]byte, 1)
	if deletePending {
		buf[0] = 1
	}
	return buf
}

// EncodeFileRenameInfo builds a FileRenameInformation block [MS-FSCC] 2.4.37
func EncodeFileRenameInfo(newName string, replaceIfExists bool) []byte {
	name := encodeUTF16LE(newName)
	buf := make([]byte, 20+len(name))
	if replaceIfExists {
		buf[0] = 1
	}
	binary.LittleEndian.PutUint32(buf[16:20], uint32(len(name))) // FileNameLength
	copy(buf[20:], name)
	return buf
}
