package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewHealthCmd создаёт команду проверки состояния сервиса.
func NewHealthCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show service health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			health, err := client.Health()
			if err != nil {
				return err
			}

			queueSize := ""
			if health.QueueSize != nil {
				queueSize = strconv.Itoa(*health.QueueSize)
			}

			out.Print(
				[]string{"STATUS", "TOTAL_TASKS", "QUEUE_SIZE", "CURRENT_TASK"},
				[][]string{{health.Status, strconv.Itoa(health.TotalTasks), queueSize, health.CurrentTask}},
				health,
			)
			return nil
		},
	}
}
