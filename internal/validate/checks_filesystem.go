package validate

import (
	"fmt"
	"log"

	"github.com/ocochard/cmonit/internal/model"
)

// checkFilesystemFlags implements check_filesystem_flags: spec.md §4.10.
// PrevFlags == -1 means no prior sample exists yet -- nothing to compare.
func (e *Engine) checkFilesystemFlags(s *model.Service) {
	fs := &s.Info.Filesystem
	if fs.PrevFlags == -1 {
		return
	}
	if fs.PrevFlags != fs.Flags {
		e.Sink.Post(s, model.EventFsflag, model.StateChanged, s.ActionFsflag,
			fmt.Sprintf("filesystem flags changed to %#x", fs.Flags))
	}
}

// checkFilesystemResources implements check_filesystem_resources: spec.md §4.10.
func (e *Engine) checkFilesystemResources(s *model.Service, td *model.FilesystemResourceTest) {
	if td.LimitPercent < 0 && td.LimitAbsolute < 0 {
		log.Printf("[ERROR] '%s' error: filesystem limit not set", s.Name)
		return
	}
	fs := &s.Info.Filesystem

	switch td.Resource {
	case model.FilesystemResourceInode:
		if fs.Files <= 0 {
			e.debugf("'%s' filesystem doesn't support inodes", s.Name)
			return
		}
		if td.LimitPercent >= 0 {
			if model.Eval(td.Operator, fs.InodePercent, td.LimitPercent) {
				e.Sink.Post(s, model.EventResource, model.StateFailed, td.Action,
					fmt.Sprintf("inode usage %.1f%% matches resource limit [inode usage%s%.1f%%]", float64(fs.InodePercent)/10, td.Operator, float64(td.LimitPercent)/10))
				return
			}
		} else if model.Eval(td.Operator, fs.InodeTotal, td.LimitAbsolute) {
			e.Sink.Post(s, model.EventResource, model.StateFailed, td.Action,
				fmt.Sprintf("inode usage %d matches resource limit [inode usage%s%d]", fs.InodeTotal, td.Operator, td.LimitAbsolute))
			return
		}
		e.debugf("'%s' inode usage check succeeded [current inode usage=%.1f%%]", s.Name, float64(fs.InodePercent)/10)
		e.Sink.Post(s, model.EventResource, model.StateSucceeded, td.Action, "filesystem resources succeeded")

	case model.FilesystemResourceSpace:
		if td.LimitPercent >= 0 {
			if model.Eval(td.Operator, fs.SpacePercent, td.LimitPercent) {
				e.Sink.Post(s, model.EventResource, model.StateFailed, td.Action,
					fmt.Sprintf("space usage %.1f%% matches resource limit [space usage%s%.1f%%]", float64(fs.SpacePercent)/10, td.Operator, float64(td.LimitPercent)/10))
				return
			}
		} else if model.Eval(td.Operator, fs.SpaceTotal, td.LimitAbsolute) {
			e.Sink.Post(s, model.EventResource, model.StateFailed, td.Action,
				fmt.Sprintf("space usage %d blocks matches resource limit [space usage%s%d blocks]", fs.SpaceTotal, td.Operator, td.LimitAbsolute))
			return
		}
		e.debugf("'%s' space usage check succeeded [current space usage=%.1f%%]", s.Name, float64(fs.SpacePercent)/10)
		e.Sink.Post(s, model.EventResource, model.StateSucceeded, td.Action, "filesystem resources succeeded")

	default:
		log.Printf("[ERROR] '%s' error -- unknown resource type: [%d]", s.Name, td.Resource)
	}
}
