// SPDX-License-Identifier: GPL-2.0-or-later

package cvar

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"sort"
	"strconv"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"godark/qerr"
)

var (
	cvarArray  []*Cvar
	cvarByName = make(map[string]*Cvar)
)

type flag uint64

const (
	// cvar flags bitfield
	NONE    flag = 0
	ARCHIVE flag = 1
	ROM     flag = 1 << 6
)

type CallbackFunc func(cv *Cvar)

type Cvar struct {
	archive  bool
	rom      bool
	callback CallbackFunc
	name     string
	// stringValue is the truth, value the derived one
	stringValue  string
	value        float32
	defaultValue string
	id           int
}

func All() []*Cvar {
	return cvarArray
}

func (cv *Cvar) Archive() bool {
	return cv.archive
}

func (cv *Cvar) SetCallback(cb CallbackFunc) {
	cv.callback = cb
}

func (cv *Cvar) SetByString(s string) {
	if cv.rom {
		return
	}
	cv.stringValue = s
	pf, _ := strconv.ParseFloat(cv.stringValue, 32)
	cv.value = float32(pf)
	if cv.callback != nil {
		cv.callback(cv)
	}
}

func (cv *Cvar) Reset() {
	cv.SetByString(cv.defaultValue)
}

func (cv *Cvar) String() string {
	return cv.stringValue
}

func (cv *Cvar) Default() string {
	return cv.defaultValue
}

func (cv *Cvar) ID() int {
	return cv.id
}

func (cv *Cvar) Name() string {
	return cv.name
}

func (cv *Cvar) Value() float32 {
	return cv.value
}

func (cv *Cvar) SetValue(value float32) {
	if float32(int(value)) == value {
		v := strconv.FormatInt(int64(value), 10)
		cv.SetByString(v)
	} else {
		v := strconv.FormatFloat(float64(value), 'f', -1, 32)
		cv.SetByString(v)
	}
}

func (cv *Cvar) Bool() bool {
	return cv.stringValue != "0"
}

func Get(name string) (*Cvar, bool) {
	cv, err := cvarByName[name]
	return cv, err
}

func create(name, value string) *Cvar {
	cv := &Cvar{name: name, defaultValue: value}
	cv.SetByString(value)
	pos := len(cvarArray)
	cvarArray = append(cvarArray, cv)
	cvarByName[name] = cv
	cv.id = pos
	return cv
}

func Register(name, value string, flags flag) (*Cvar, error) {
	if _, ok := cvarByName[name]; ok {
		return nil, qerr.AlreadyExists("cvar %s", name)
	}

	cv := create(name, value)

	if flags&ARCHIVE != 0 {
		cv.archive = true
	}
	if flags&ROM != 0 {
		cv.rom = true
	}

	return cv, nil
}

func MustRegister(n, v string, flag flag) *Cvar {
	cv, err := Register(n, v, flag)
	if err != nil {
		log.Panic(n)
	}
	return cv
}

// Set changes an existing cvar.
func Set(name, value string) error {
	cv, ok := Get(name)
	if !ok {
		return qerr.NotFound("cvar %s", name)
	}
	cv.SetByString(value)
	return nil
}

func ResetAll() {
	for _, cv := range All() {
		cv.Reset()
	}
}

// List writes all cvars in the form the console used to print them.
func List(w io.Writer) error {
	for _, v := range All() {
		a := " "
		if v.Archive() {
			a = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %s \"%s\"\n", a, v.Name(), v.String()); err != nil {
			return qerr.IO("list cvars", err)
		}
	}
	_, err := fmt.Fprintf(w, "%v cvars\n", len(All()))
	return qerr.IO("list cvars", err)
}

// LoadTOML sets cvars from a TOML document. Keys inside a table are
// joined with an underscore, so lm.atlas_max sets lm_atlas_max. Unknown
// keys are logged and skipped.
func LoadTOML(r io.Reader) error {
	tree, err := toml.LoadReader(r)
	if err != nil {
		return errors.Wrap(qerr.ErrFormat, err.Error())
	}
	values := make(map[string]string)
	flatten("", tree.ToMap(), values)
	names := make([]string, 0, len(values))
	for n := range values {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if err := Set(n, values[n]); err != nil {
			slog.Warn("Unknown cvar in config", slog.String("cvar", n))
		}
	}
	return nil
}

func flatten(prefix string, m map[string]interface{}, out map[string]string) {
	for k, v := range m {
		name := k
		if prefix != "" {
			name = prefix + "_" + k
		}
		switch t := v.(type) {
		case map[string]interface{}:
			flatten(name, t, out)
		case bool:
			if t {
				out[name] = "1"
			} else {
				out[name] = "0"
			}
		default:
			out[name] = fmt.Sprint(t)
		}
	}
}
