package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbcore/internal/protocol/smb/types"
	"github.com/marmos91/smbcore/internal/protocol/smb/wire"
)

var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Delete a remote file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := remotePath(args[0])

		s, err := connect(true)
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.deleteFile(name); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", name)
		return nil
	},
}

// deleteFile marks a file delete-on-close via SET_INFO and releases the
// handle, which removes it
func (s *session) deleteFile(name string) error {
	open, err := s.openFile(name,
		types.Delete|types.FileReadAttributes,
		types.FileOpen,
		types.FileNonDirectoryFile)
	if err != nil {
		return err
	}
	defer s.closeFile(open.FileID)

	fut, err := s.client.Conn().SetInfo(&wire.SetInfoRequest{
		InfoType:      types.SMB2InfoTypeFile,
		FileInfoClass: types.FileDispositionInformation,
		FileID:        open.FileID,
		Buffer:        wire.EncodeFileDispositionInfo(true),
	}, s.deadline())
	if err != nil {
		return err
	}
	_, err = s.await(fut)
	return err
}
