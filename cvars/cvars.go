// SPDX-License-Identifier: GPL-2.0-or-later

package cvars

import (
	"godark/cvar"
)

var (
	LightmapAtlasInitial *cvar.Cvar
	LightmapAtlasMax     *cvar.Cvar
	WorldStrict          *cvar.Cvar
)

func init() {
	LightmapAtlasInitial = cvar.MustRegister("lm_atlas_initial", "64", cvar.ARCHIVE)
	LightmapAtlasMax = cvar.MustRegister("lm_atlas_max", "2048", cvar.ARCHIVE)
	WorldStrict = cvar.MustRegister("wr_strict", "1", cvar.NONE)
}
