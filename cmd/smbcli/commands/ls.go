package commands

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbcore/internal/bytesize"
	"github.com/marmos91/smbcore/internal/cli/output"
	"github.com/marmos91/smbcore/internal/protocol/smb/types"
	"github.com/marmos91/smbcore/internal/protocol/smb/wire"
	"github.com/marmos91/smbcore/internal/smbclient"
)

const dirListBufferSize = 64 * 1024

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a directory on the share",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) == 1 {
			dir = remotePath(args[0])
		}

		s, err := connect(true)
		if err != nil {
			return err
		}
		defer s.close()

		entries, err := s.listDirectory(dir)
		if err != nil {
			return err
		}

		table := output.NewTable("TYPE", "SIZE", "MODIFIED", "NAME")
		for _, e := range entries {
			if e.FileName == "." || e.FileName == ".." {
				continue
			}
			kind := "file"
			size := bytesize.ByteSize(e.EndOfFile).String()
			if e.IsDir() {
				kind = "dir"
				size = "-"
			}
			table.AddRow(kind, size, e.LastWriteTime.Format("2006-01-02 15:04"), e.FileName)
		}
		table.Render(os.Stdout)
		return nil
	},
}

// listDirectory opens a directory handle and drains QUERY_DIRECTORY until
// the server reports no more files
func (s *session) listDirectory(dir string) ([]wire.DirEntry, error) {
	open, err := s.openFile(dir,
		types.FileReadData|types.FileReadAttributes,
		types.FileOpen,
		types.FileDirectoryFile)
	if err != nil {
		return nil, err
	}
	defer s.closeFile(open.FileID)

	var entries []wire.DirEntry
	flags := types.SMB2RestartScans
	for {
		fut, err := s.client.Conn().QueryDirectory(&wire.QueryDirectoryRequest{
			FileInfoClass:      types.FileIdBothDirectoryInformation,
			Flags:              flags,
			FileID:             open.FileID,
			FileName:           "*",
			OutputBufferLength: dirListBufferSize,
		}, s.deadline())
		if err != nil {
			return nil, err
		}
		flags = 0

		resp, err := s.await(fut)
		if err != nil {
			var perr *smbclient.ProtocolError
			if errors.As(err, &perr) && perr.Kind == types.KindNoMoreFiles {
				return entries, nil
			}
			return nil, err
		}

		qd, err := wire.DecodeQueryDirectoryResponse(resp.Body)
		if err != nil {
			return nil, err
		}
		batch, err := wire.DecodeFileIdBothDirectoryInfo(qd.Data)
		if err != nil {
			return nil, err
		}
		entries = append(entries, batch...)
	}
}

// remotePath converts a slash-separated argument into the backslash form
// the wire format expects, without a leading separator
func remotePath(p string) string {
	p = strings.ReplaceAll(p, "/", `\`)
	return strings.TrimPrefix(p, `\`)
}
