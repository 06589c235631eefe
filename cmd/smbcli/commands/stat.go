package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbcore/internal/bytesize"
	"github.com/marmos91/smbcore/internal/cli/output"
	"github.com/marmos91/smbcore/internal/protocol/smb/types"
	"github.com/marmos91/smbcore/internal/protocol/smb/wire"
)

var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Show file attributes",
	Long: `Stat fetches basic and standard information for a remote path in a single
compound open-query-query-close exchange.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := remotePath(args[0])

		s, err := connect(true)
		if err != nil {
			return err
		}
		defer s.close()

		basic, standard, err := s.statFile(name)
		if err != nil {
			return err
		}

		kind := "file"
		if standard.Directory {
			kind = "directory"
		}

		table := output.NewTable("FIELD", "VALUE")
		table.AddRow("name", name)
		table.AddRow("type", kind)
		table.AddRow("size", bytesize.ByteSize(standard.EndOfFile).String())
		table.AddRow("allocated", bytesize.ByteSize(standard.AllocationSize).String())
		table.AddRow("links", fmt.Sprintf("%d", standard.NumberOfLinks))
		table.AddRow("created", basic.CreationTime.Format("2006-01-02 15:04:05"))
		table.AddRow("modified", basic.LastWriteTime.Format("2006-01-02 15:04:05"))
		table.AddRow("accessed", basic.LastAccessTime.Format("2006-01-02 15:04:05"))
		table.AddRow("attributes", fmt.Sprintf("0x%08x", basic.FileAttributes))
		table.Render(os.Stdout)
		return nil
	},
}

// statFile issues a compound CREATE + QUERY_INFO(basic) + QUERY_INFO(standard)
// + CLOSE against one handle
func (s *session) statFile(name string) (*wire.FileBasicInfo, *wire.FileStandardInfo, error) {
	seq := s.client.Conn().NewSequence()

	createBody := wire.EncodeCreateRequest(&wire.CreateRequest{
		ImpersonationLevel: types.ImpersonationImpersonation,
		DesiredAccess:      types.FileReadAttributes,
		ShareAccess:        types.FileShareRead | types.FileShareWrite | types.FileShareDelete,
		CreateDisposition:  types.FileOpen,
		FileName:           name,
	})
	if _, err := seq.AddStep(types.SMB2Create, createBody, false); err != nil {
		return nil, nil, err
	}

	for _, class := range []uint8{types.FileBasicInformation, types.FileStandardInformation} {
		body := wire.EncodeQueryInfoRequest(&wire.QueryInfoRequest{
			InfoType:           types.SMB2InfoTypeFile,
			FileInfoClass:      class,
			OutputBufferLength: 1024,
		})
		if _, err := seq.AddStep(types.SMB2QueryInfo, body, true); err != nil {
			return nil, nil, err
		}
	}

	closeBody := wire.EncodeCloseRequest(&wire.CloseRequest{})
	if _, err := seq.AddStep(types.SMB2Close, closeBody, true); err != nil {
		return nil, nil, err
	}

	futs, err := seq.Send(s.deadline())
	if err != nil {
		return nil, nil, err
	}

	// the close resolves last in both compound and sequential delivery
	if _, err := s.await(futs[len(futs)-1]); err != nil {
		return nil, nil, err
	}

	basicResp, err := futs[1].Result()
	if err != nil {
		return nil, nil, err
	}
	standardResp, err := futs[2].Result()
	if err != nil {
		return nil, nil, err
	}

	basicInfo, err := wire.DecodeQueryInfoResponse(basicResp.Body)
	if err != nil {
		return nil, nil, err
	}
	standardInfo, err := wire.DecodeQueryInfoResponse(standardResp.Body)
	if err != nil {
		return nil, nil, err
	}

	basic, err := wire.DecodeFileBasicInfo(basicInfo.Data)
	if err != nil {
		return nil, nil, err
	}
	standard, err := wire.DecodeFileStandardInfo(standardInfo.Data)
	if err != nil {
		return nil, nil, err
	}
	return basic, standard, nil
}
