package queue

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// JobExpirePayment expires an order's payment if it is still pending.
const JobExpirePayment = "payment.expire"

// Job is a unit of delayed work. Jobs are idempotent: running one twice, or
// after the state it targets has moved on, is a no-op.
type Job struct {
	Kind    string    `json:"kind"`
	OrderID uuid.UUID `json:"order_id"`
	Attempt int       `json:"attempt"`
}

// Key identifies the job within its queue. Retries of the same job get a
// distinct key so a rescheduled attempt does not collapse into the original.
func (j Job) Key() string {
	return fmt.Sprintf("%s:%s:%d", j.Kind, j.OrderID, j.Attempt)
}

func encodeJob(j Job) (string, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJob(s string) (Job, error) {
	var j Job
	err := json.Unmarshal([]byte(s), &j)
	return j, err
}
