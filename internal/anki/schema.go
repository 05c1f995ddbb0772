package anki

const baseSchema = `
CREATE TABLE col (
    id     integer PRIMARY KEY,
    crt    integer NOT NULL,
    mod    integer NOT NULL,
    scm    integer NOT NULL,
    ver    integer NOT NULL,
    dty    integer NOT NULL,
    usn    integer NOT NULL,
    ls     integer NOT NULL,
    conf   text NOT NULL,
    models text NOT NULL,
    decks  text NOT NULL,
    dconf  text NOT NULL,
    tags   text NOT NULL
);
CREATE TABLE notes (
    id    integer PRIMARY KEY,
    guid  text NOT NULL,
    mid   integer NOT NULL,
    mod   integer NOT NULL,
    usn   integer NOT NULL,
    tags  text NOT NULL,
    flds  text NOT NULL,
    sfld  text NOT NULL,
    csum  integer NOT NULL,
    flags integer NOT NULL,
    data  text NOT NULL
);
CREATE TABLE cards (
    id     integer PRIMARY KEY,
    nid    integer NOT NULL,
    did    integer NOT NULL,
    ord    integer NOT NULL,
    mod    integer NOT NULL,
    usn    integer NOT NULL,
    type   integer NOT NULL,
    queue  integer NOT NULL,
    due    integer NOT NULL,
    ivl    integer NOT NULL,
    factor integer NOT NULL,
    reps   integer NOT NULL,
    lapses integer NOT NULL,
    left   integer NOT NULL,
    odue   integer NOT NULL,
    odid   integer NOT NULL,
    flags  integer NOT NULL,
    data   text NOT NULL
);
CREATE TABLE revlog (
    id      integer PRIMARY KEY,
    cid     integer NOT NULL,
    usn     integer NOT NULL,
    ease    integer NOT NULL,
    ivl     integer NOT NULL,
    lastIvl integer NOT NULL,
    factor  integer NOT NULL,
    time    integer NOT NULL,
    type    integer NOT NULL
);
CREATE TABLE graves (
    usn  integer NOT NULL,
    oid  integer NOT NULL,
    type integer NOT NULL
);
CREATE INDEX ix_notes_usn ON notes (usn);
CREATE INDEX ix_cards_usn ON cards (usn);
CREATE INDEX ix_revlog_usn ON revlog (usn);
CREATE INDEX ix_cards_nid ON cards (nid);
CREATE INDEX ix_cards_sched ON cards (did, queue, due);
CREATE INDEX ix_revlog_cid ON revlog (cid);
CREATE INDEX ix_notes_csum ON notes (csum);
`

// latestSchema is applied on top of baseSchema for schema 18 collections.
const latestSchema = `
ALTER TABLE cards ADD COLUMN fsrsState integer;
ALTER TABLE cards ADD COLUMN fsrsDifficulty real;
ALTER TABLE cards ADD COLUMN fsrsStability real;
ALTER TABLE cards ADD COLUMN fsrsDue integer;
CREATE TABLE mediaMeta (
    dirMod  integer NOT NULL,
    lastUsn integer NOT NULL
);
CREATE TABLE fsrsWeights (
    id      integer PRIMARY KEY,
    weights text NOT NULL
);
CREATE TABLE fsrsParams (
    id               integer PRIMARY KEY,
    desiredRetention real NOT NULL,
    maximumInterval  integer NOT NULL
);
`

const insertCol = `INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
VALUES (:id, :crt, :mod, :scm, :ver, :dty, :usn, :ls, :conf, :models, :decks, :dconf, :tags)`

const insertNote = `INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
VALUES (:id, :guid, :mid, :mod, :usn, :tags, :flds, :sfld, :csum, :flags, :data)`

const insertCard = `INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data)
VALUES (:id, :nid, :did, :ord, :mod, :usn, :type, :queue, :due, :ivl, :factor, :reps, :lapses, :left, :odue, :odid, :flags, :data)`

const insertLatestCard = `INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data,
    fsrsState, fsrsDifficulty, fsrsStability, fsrsDue)
VALUES (:id, :nid, :did, :ord, :mod, :usn, :type, :queue, :due, :ivl, :factor, :reps, :lapses, :left, :odue, :odid, :flags, :data,
    :fsrsState, :fsrsDifficulty, :fsrsStability, :fsrsDue)`

// colRow mirrors the singleton row of the col table.
type colRow struct {
	ID     int64  `db:"id"`
	Crt    int64  `db:"crt"`
	Mod    int64  `db:"mod"`
	Scm    int64  `db:"scm"`
	Ver    int    `db:"ver"`
	Dty    int    `db:"dty"`
	Usn    int    `db:"usn"`
	Ls     int64  `db:"ls"`
	Conf   string `db:"conf"`
	Models string `db:"models"`
	Decks  string `db:"decks"`
	Dconf  string `db:"dconf"`
	Tags   string `db:"tags"`
}

type noteRow struct {
	ID    int64  `db:"id"`
	GUID  string `db:"guid"`
	Mid   int64  `db:"mid"`
	Mod   int64  `db:"mod"`
	Usn   int    `db:"usn"`
	Tags  string `db:"tags"`
	Flds  string `db:"flds"`
	Sfld  string `db:"sfld"`
	Csum  int64  `db:"csum"`
	Flags int    `db:"flags"`
	Data  string `db:"data"`
}

type cardRow struct {
	ID             int64    `db:"id"`
	Nid            int64    `db:"nid"`
	Did            int64    `db:"did"`
	Ord            int      `db:"ord"`
	Mod            int64    `db:"mod"`
	Usn            int      `db:"usn"`
	Type           int      `db:"type"`
	Queue          int      `db:"queue"`
	Due            int64    `db:"due"`
	Ivl            int      `db:"ivl"`
	Factor         int      `db:"factor"`
	Reps           int      `db:"reps"`
	Lapses         int      `db:"lapses"`
	Left           int      `db:"left"`
	Odue           int64    `db:"odue"`
	Odid           int64    `db:"odid"`
	Flags          int      `db:"flags"`
	Data           string   `db:"data"`
	FSRSState      *int64   `db:"fsrsState"`
	FSRSDifficulty *float64 `db:"fsrsDifficulty"`
	FSRSStability  *float64 `db:"fsrsStability"`
	FSRSDue        *int64   `db:"fsrsDue"`
}
