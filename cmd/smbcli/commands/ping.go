package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var pingCount int

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Measure round-trip time with SMB2 ECHO",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(false)
		if err != nil {
			return err
		}
		defer s.close()

		for i := 0; i < pingCount; i++ {
			start := time.Now()
			fut, err := s.client.Conn().Echo(s.deadline())
			if err != nil {
				return err
			}
			if _, err := s.await(fut); err != nil {
				return err
			}
			fmt.Printf("echo %d: %v\n", i+1, time.Since(start).Round(time.Microsecond))
		}
		return nil
	},
}

func init() {
	pingCmd.Flags().IntVarP(&pingCount, "count", "c", 3, "number of echo requests")
}
