package emailsvc

import (
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/ogunkayacan/lisans/core"
)

// consoleService writes emails to stdout instead of sending them; used in
// DEV and TEST modes.
type consoleService struct{}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService() *consoleService {
	return &consoleService{}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if msg.HasRecipients() && msg.HasContent() {
			svc.print(msg)
		}
	}
}

func (svc consoleService) print(msg *core.EmailMessage) {
	fmt.Fprintf(os.Stdout, `
---------- EMAIL ----------
To: %s
Subject: %s

%s
---------------------------
`, joinAddresses(msg.To), msg.Subject, msg.Body)
}

func joinAddresses(addrs []mail.Address) string {
	strs := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		strs = append(strs, addr.String())
	}
	return strings.Join(strs, ", ")
}
