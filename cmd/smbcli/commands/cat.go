package commands

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbcore/internal/protocol/smb/types"
	"github.com/marmos91/smbcore/internal/protocol/smb/wire"
	"github.com/marmos91/smbcore/internal/smbclient"
)

var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Print a remote file to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(true)
		if err != nil {
			return err
		}
		defer s.close()

		return s.copyFile(os.Stdout, remotePath(args[0]))
	},
}

// copyFile streams a remote file to w in fixed-size reads
func (s *session) copyFile(w io.Writer, name string) error {
	open, err := s.openFile(name,
		types.FileReadData|types.FileReadAttributes,
		types.FileOpen,
		types.FileNonDirectoryFile)
	if err != nil {
		return err
	}
	defer s.closeFile(open.FileID)

	var offset uint64
	for offset < open.EndOfFile {
		fut, err := s.client.Conn().Read(open.FileID, offset, s.chunkSize(), s.deadline())
		if err != nil {
			return err
		}
		resp, err := s.await(fut)
		if err != nil {
			var perr *smbclient.ProtocolError
			if errors.As(err, &perr) && perr.Kind == types.KindEndOfFile {
				return nil
			}
			return err
		}

		rd, err := wire.DecodeReadResponse(resp.Body)
		if err != nil {
			return err
		}
		if len(rd.Data) == 0 {
			return nil
		}
		if _, err := w.Write(rd.Data); err != nil {
			return err
		}
		offset += uint64(len(rd.Data))
	}
	return nil
}
