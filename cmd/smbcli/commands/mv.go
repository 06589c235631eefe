package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbcore/internal/protocol/smb/types"
	"github.com/marmos91/smbcore/internal/protocol/smb/wire"
)

var mvReplace bool

var mvCmd = &cobra.Command{
	Use:   "mv <from> <to>",
	Short: "Rename a file on the share",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from := remotePath(args[0])
		to := remotePath(args[1])

		s, err := connect(true)
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.renameFile(from, to); err != nil {
			return err
		}
		fmt.Printf("renamed %s to %s\n", from, to)
		return nil
	},
}

func init() {
	mvCmd.Flags().BoolVarP(&mvReplace, "force", "f", false, "replace the target if it exists")
}

// renameFile renames an open handle via SET_INFO FileRenameInformation
func (s *session) renameFile(from, to string) error {
	open, err := s.openFile(from,
		types.Delete|types.FileReadAttributes,
		types.FileOpen,
		0)
	if err != nil {
		return err
	}
	defer s.closeFile(open.FileID)

	fut, err := s.client.Conn().SetInfo(&wire.SetInfoRequest{
		InfoType:      types.SMB2InfoTypeFile,
		FileInfoClass: types.FileRenameInformation,
		FileID:        open.FileID,
		Buffer:        wire.EncodeFileRenameInfo(to, mvReplace),
	}, s.deadline())
	if err != nil {
		return err
	}
	_, err = s.await(fut)
	return err
}
