package policy

import (
	"github.com/aadityabagga/TLP/pkg/trace"
)

const (
	hdaPowerSave           = "/sys/module/snd_hda_intel/parameters/power_save"
	hdaPowerSaveController = "/sys/module/snd_hda_intel/parameters/power_save_controller"
	ac97PowerSave          = "/sys/module/snd_ac97_codec/parameters/power_save"
)

// applyAudio sets the audio codec power-save timeout, plus the
// companion controller flag for the HDA family. Only codec entries
// that actually exist are written, so machines with a single codec
// family are handled naturally.
func (e *Engine) applyAudio(onBattery bool) {
	timeout := e.Cfg.SoundPowerSave(onBattery)
	if timeout == "" {
		return
	}

	if e.FS.Exists(hdaPowerSave) {
		e.FS.WriteValue(hdaPowerSave, timeout)
		if e.FS.Exists(hdaPowerSaveController) {
			e.FS.WriteValue(hdaPowerSaveController, e.Cfg.SoundPowerSaveController(onBattery))
		}
		trace.Tracef("pm", "snd_hda_intel power_save set to %s", timeout)
	}

	if e.FS.Exists(ac97PowerSave) {
		e.FS.WriteValue(ac97PowerSave, timeout)
		trace.Tracef("pm", "snd_ac97_codec power_save set to %s", timeout)
	}
}
