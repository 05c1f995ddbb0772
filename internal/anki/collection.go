package anki

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// colConf is the col.conf blob.
type colConf struct {
	NextPos       int     `json:"nextPos"`
	EstTimes      bool    `json:"estTimes"`
	ActiveDecks   []int64 `json:"activeDecks"`
	SortType      string  `json:"sortType"`
	TimeLim       int     `json:"timeLim"`
	SortBackwards bool    `json:"sortBackwards"`
	AddToCur      bool    `json:"addToCur"`
	CurDeck       int64   `json:"curDeck"`
	NewBury       bool    `json:"newBury"`
	NewSpread     int     `json:"newSpread"`
	DueCounts     bool    `json:"dueCounts"`
	CurModel      string  `json:"curModel"`
	CollapseTime  int     `json:"collapseTime"`
}

type deckJSON struct {
	ID               int64  `json:"id"`
	Mod              int64  `json:"mod"`
	Name             string `json:"name"`
	Usn              int    `json:"usn"`
	LrnToday         [2]int `json:"lrnToday"`
	RevToday         [2]int `json:"revToday"`
	NewToday         [2]int `json:"newToday"`
	TimeToday        [2]int `json:"timeToday"`
	Collapsed        bool   `json:"collapsed"`
	BrowserCollapsed bool   `json:"browserCollapsed"`
	Desc             string `json:"desc"`
	Dyn              int    `json:"dyn"`
	Conf             int64  `json:"conf"`
	ExtendNew        int    `json:"extendNew"`
	ExtendRev        int    `json:"extendRev"`
	ReviewLimit      *int   `json:"reviewLimit"`
	NewLimit         *int   `json:"newLimit"`
	ReviewLimitToday *int   `json:"reviewLimitToday"`
	NewLimitToday    *int   `json:"newLimitToday"`
}

type fieldJSON struct {
	Name   string   `json:"name"`
	Ord    int      `json:"ord"`
	Sticky bool     `json:"sticky"`
	RTL    bool     `json:"rtl"`
	Font   string   `json:"font"`
	Size   int      `json:"size"`
	Media  []string `json:"media"`
}

type templateJSON struct {
	Name  string `json:"name"`
	Ord   int    `json:"ord"`
	QFmt  string `json:"qfmt"`
	AFmt  string `json:"afmt"`
	BQFmt string `json:"bqfmt"`
	BAFmt string `json:"bafmt"`
	Did   *int64 `json:"did"`
}

type modelJSON struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Type      ModelType      `json:"type"`
	Mod       int64          `json:"mod"`
	Usn       int            `json:"usn"`
	Sortf     int            `json:"sortf"`
	Did       int64          `json:"did"`
	Tmpls     []templateJSON `json:"tmpls"`
	Flds      []fieldJSON    `json:"flds"`
	CSS       string         `json:"css"`
	LatexPre  string         `json:"latexPre"`
	LatexPost string         `json:"latexPost"`
	Tags      []string       `json:"tags"`
	Vers      []int          `json:"vers"`
}

type newConfJSON struct {
	Delays        []float64 `json:"delays"`
	Ints          [3]int    `json:"ints"`
	InitialFactor int       `json:"initialFactor"`
	Order         int       `json:"order"`
	PerDay        int       `json:"perDay"`
	Bury          bool      `json:"bury"`
}

type revConfJSON struct {
	PerDay     int     `json:"perDay"`
	Ease4      float64 `json:"ease4"`
	IvlFct     float64 `json:"ivlFct"`
	MaxIvl     int     `json:"maxIvl"`
	Bury       bool    `json:"bury"`
	HardFactor float64 `json:"hardFactor"`
}

type lapseConfJSON struct {
	Delays      []float64 `json:"delays"`
	Mult        float64   `json:"mult"`
	MinInt      int       `json:"minInt"`
	LeechFails  int       `json:"leechFails"`
	LeechAction int       `json:"leechAction"`
}

type dconfJSON struct {
	ID               int64         `json:"id"`
	Mod              int64         `json:"mod"`
	Name             string        `json:"name"`
	Usn              int           `json:"usn"`
	MaxTaken         int           `json:"maxTaken"`
	Autoplay         bool          `json:"autoplay"`
	Timer            int           `json:"timer"`
	Replayq          bool          `json:"replayq"`
	New              newConfJSON   `json:"new"`
	Rev              revConfJSON   `json:"rev"`
	Lapse            lapseConfJSON `json:"lapse"`
	DesiredRetention float64       `json:"desiredRetention"`
	FSRSWeights      []float64     `json:"fsrsWeights,omitempty"`
}

const defaultConfID = 1

func newDeckJSON(d Deck, mod int64) deckJSON {
	conf := d.ConfID
	if conf == 0 {
		conf = defaultConfID
	}
	return deckJSON{
		ID:        d.ID,
		Mod:       mod,
		Name:      d.Name,
		Usn:       -1,
		Desc:      d.Description,
		Conf:      conf,
		ExtendNew: 10,
		ExtendRev: 50,
	}
}

func (d deckJSON) deck() Deck {
	return Deck{ID: d.ID, Name: d.Name, Description: d.Desc, ConfID: d.Conf}
}

func newModelJSON(m Model, deckID, mod int64) modelJSON {
	flds := make([]fieldJSON, 0, len(m.Fields))
	for _, f := range m.Fields {
		flds = append(flds, fieldJSON{Name: f.Name, Ord: f.Ord, Font: "Arial", Size: 20, Media: []string{}})
	}
	tmpls := make([]templateJSON, 0, len(m.Templates))
	for _, t := range m.Templates {
		tmpls = append(tmpls, templateJSON{Name: t.Name, Ord: t.Ord, QFmt: t.QFmt, AFmt: t.AFmt})
	}
	return modelJSON{
		ID:        m.ID,
		Name:      m.Name,
		Type:      m.Type,
		Mod:       mod,
		Usn:       -1,
		Did:       deckID,
		Tmpls:     tmpls,
		Flds:      flds,
		CSS:       m.CSS,
		LatexPre:  `\documentclass[12pt]{article}\special{papersize=3in,5in}\usepackage{amssymb,amsmath}\pagestyle{empty}\begin{document}`,
		LatexPost: `\end{document}`,
		Tags:      []string{},
		Vers:      []int{},
	}
}

func (m modelJSON) model() Model {
	model := Model{ID: m.ID, Name: m.Name, Type: m.Type, CSS: m.CSS}
	for _, f := range m.Flds {
		model.Fields = append(model.Fields, Field{Name: f.Name, Ord: f.Ord})
	}
	for _, t := range m.Tmpls {
		model.Templates = append(model.Templates, Template{Name: t.Name, Ord: t.Ord, QFmt: t.QFmt, AFmt: t.AFmt})
	}
	return model
}

func newDconfJSON(mod int64, retention float64, weights []float64) dconfJSON {
	return dconfJSON{
		ID:       defaultConfID,
		Mod:      mod,
		Name:     "Default",
		MaxTaken: 60,
		Autoplay: true,
		Replayq:  true,
		New: newConfJSON{
			Delays:        []float64{1, 10},
			Ints:          [3]int{1, 4, 0},
			InitialFactor: 2500,
			Order:         1,
			PerDay:        20,
		},
		Rev: revConfJSON{
			PerDay:     200,
			Ease4:      1.3,
			IvlFct:     1,
			MaxIvl:     36500,
			HardFactor: 1.2,
		},
		Lapse: lapseConfJSON{
			Delays:      []float64{10},
			MinInt:      1,
			LeechFails:  8,
			LeechAction: 1,
		},
		DesiredRetention: retention,
		FSRSWeights:      weights,
	}
}

// marshalByID encodes values as a JSON object keyed by their decimal ID.
func marshalByID[T any](values []T, id func(T) int64) (string, error) {
	m := make(map[string]T, len(values))
	for _, v := range values {
		m[strconv.FormatInt(id(v), 10)] = v
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("json.Marshal() > %w", err)
	}
	return string(b), nil
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("json.Marshal() > %w", err)
	}
	return string(b), nil
}
