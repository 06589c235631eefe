package commands

import (
	"github.com/marmos91/smbcore/internal/protocol/smb/types"
	"github.com/marmos91/smbcore/internal/protocol/smb/wire"
)

// openFile opens a path on the connected share and returns the decoded
// CREATE response carrying the granted handle
func (s *session) openFile(name string, access, disposition, options uint32) (*wire.CreateResponse, error) {
	fut, err := s.client.Conn().Create(&wire.CreateRequest{
		ImpersonationLevel: types.ImpersonationImpersonation,
		DesiredAccess:      access,
		ShareAccess:        types.FileShareRead | types.FileShareWrite | types.FileShareDelete,
		CreateDisposition:  disposition,
		CreateOptions:      options,
		FileName:           name,
	}, s.deadline())
	if err != nil {
		return nil, err
	}
	resp, err := s.await(fut)
	if err != nil {
		return nil, err
	}
	return wire.DecodeCreateResponse(resp.Body)
}

// closeFile releases a handle, ignoring close failures
func (s *session) closeFile(fileID [16]byte) {
	if fut, err := s.client.Conn().CloseFile(fileID, 0, s.deadline()); err == nil {
		_, _ = s.await(fut)
	}
}
