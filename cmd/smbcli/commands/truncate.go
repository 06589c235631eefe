package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbcore/internal/bytesize"
	"github.com/marmos91/smbcore/internal/protocol/smb/types"
	"github.com/marmos91/smbcore/internal/protocol/smb/wire"
)

var truncateCmd = &cobra.Command{
	Use:   "truncate <path> <size>",
	Short: "Set the end-of-file marker of a remote file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := remotePath(args[0])
		size, err := bytesize.ParseByteSize(args[1])
		if err != nil {
			return fmt.Errorf("invalid size %q: %w", args[1], err)
		}

		s, err := connect(true)
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.truncateFile(name, size.Uint64()); err != nil {
			return err
		}
		fmt.Printf("truncated %s to %s\n", name, size)
		return nil
	},
}

// truncateFile moves the end-of-file marker via SET_INFO
// FileEndOfFileInformation; the server zero-fills on extension
func (s *session) truncateFile(name string, size uint64) error {
	open, err := s.openFile(name,
		types.FileWriteData|types.FileReadAttributes,
		types.FileOpen,
		types.FileNonDirectoryFile)
	if err != nil {
		return err
	}
	defer s.closeFile(open.FileID)

	fut, err := s.client.Conn().SetInfo(&wire.SetInfoRequest{
		InfoType:      types.SMB2InfoTypeFile,
		FileInfoClass: types.FileEndOfFileInformation,
		FileID:        open.FileID,
		Buffer:        wire.EncodeFileEndOfFileInfo(size),
	}, s.deadline())
	if err != nil {
		return err
	}
	_, err = s.await(fut)
	return err
}
