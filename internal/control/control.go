package control

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/ocochard/cmonit/internal/model"
)

// actionNames maps the engine's Action enum to the verb a control command
// expects on its command line. ActionAlert only posts an event -- it has
// no corresponding control verb -- and ActionExec/ActionIgnore are handled
// by the sink, so none of the three appear here.
var actionNames = map[model.Action]string{
	model.ActionStart:     "start",
	model.ActionStop:      "stop",
	model.ActionRestart:   "restart",
	model.ActionUnmonitor: "unmonitor",
}

// DefaultTemplate runs the system service manager directly: "service
// <name> <action>". Override for a systemd host with
// []string{"systemctl", "{action}", "{name}"}, or anything else a given
// deployment's init system expects.
var DefaultTemplate = []string{"service", "{name}", "{action}"}

// Controller implements validate.ServiceController by shelling out to a
// configurable control command, replacing the teacher's MonitClient's
// HTTP-control-API-over-CSRF-POST approach with a local
// os/exec invocation, since do_scheduled_action's target here is a
// service on this same host, not a remote agent.
type Controller struct {
	template []string
}

// NewController builds a Controller from a command template. Pass nil to
// use DefaultTemplate.
func NewController(template []string) *Controller {
	if template == nil {
		template = DefaultTemplate
	}
	return &Controller{template: template}
}

func (c *Controller) Control(name string, action model.Action) error {
	verb, ok := actionNames[action]
	if !ok {
		return nil // ActionIgnore, ActionExec: nothing for the controller to do
	}

	replacer := strings.NewReplacer("{name}", name, "{action}", verb)
	argv := make([]string, len(c.template))
	for i, tok := range c.template {
		argv[i] = replacer.Replace(tok)
	}
	if len(argv) == 0 {
		return fmt.Errorf("control: empty command template")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("control command %q failed: %w (%s)", strings.Join(argv, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}
