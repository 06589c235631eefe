package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbcore/internal/bytesize"
	"github.com/marmos91/smbcore/internal/protocol/smb/types"
	"github.com/marmos91/smbcore/internal/protocol/smb/wire"
)

var putCmd = &cobra.Command{
	Use:   "put <local> [remote]",
	Short: "Upload a local file to the share",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		local := args[0]
		remote := filepath.Base(local)
		if len(args) == 2 {
			remote = remotePath(args[1])
		}

		data, err := os.ReadFile(local)
		if err != nil {
			return err
		}

		s, err := connect(true)
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.uploadFile(remote, data); err != nil {
			return err
		}
		fmt.Printf("uploaded %s (%s) to %s\n", local, bytesize.ByteSize(len(data)), remote)
		return nil
	},
}

// uploadFile creates or overwrites a remote file and writes its contents in
// fixed-size chunks, flushing once at the end
func (s *session) uploadFile(name string, data []byte) error {
	open, err := s.openFile(name,
		types.FileWriteData|types.FileReadAttributes,
		types.FileOverwriteIf,
		types.FileNonDirectoryFile)
	if err != nil {
		return err
	}
	defer s.closeFile(open.FileID)

	var offset uint64
	for len(data) > 0 {
		chunk := data
		if max := int(s.chunkSize()); len(chunk) > max {
			chunk = chunk[:max]
		}

		fut, err := s.client.Conn().Write(open.FileID, offset, chunk, s.deadline())
		if err != nil {
			return err
		}
		resp, err := s.await(fut)
		if err != nil {
			return err
		}
		wr, err := wire.DecodeWriteResponse(resp.Body)
		if err != nil {
			return err
		}
		if wr.Count == 0 {
			return fmt.Errorf("server wrote 0 bytes at offset %d", offset)
		}

		offset += uint64(wr.Count)
		data = data[wr.Count:]
	}

	fut, err := s.client.Conn().Flush(open.FileID, s.deadline())
	if err != nil {
		return err
	}
	_, err = s.await(fut)
	return err
}
