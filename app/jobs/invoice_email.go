// Package jobs holds the application's queued job types.
package jobs

import (
	"github.com/shashiranjanraj/motomart/pkg/mail"
	"github.com/shashiranjanraj/motomart/pkg/queue"
)

// InvoiceEmailJobName is the registry key used by the queue registry.
const InvoiceEmailJobName = "jobs.InvoiceEmail"

// InvoiceEmailJob delivers a rendered invoice to the order's owner. One
// attempt only; a failed send is reported through the queue result hook and
// never retried.
type InvoiceEmailJob struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTML     string `json:"html"`
	Filename string `json:"filename"`
	PDF      []byte `json:"pdf"`
}

func (j *InvoiceEmailJob) JobName() string { return InvoiceEmailJobName }

func (j *InvoiceEmailJob) Handle() error {
	return mail.To(j.To).
		Subject(j.Subject).
		Body(j.HTML).
		Attach(j.Filename, j.PDF, "application/pdf").
		Send()
}

// Register wires the job type into the queue registry so serialized
// payloads can be rebuilt by workers.
func Register() {
	queue.Register(InvoiceEmailJobName, func() queue.Job { return &InvoiceEmailJob{} })
}
