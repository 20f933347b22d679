package database

// Schema is the full DDL. Every uniqueness scope the services check in
// application code has a matching UNIQUE index here as the race-safe
// backstop.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id                  INTEGER PRIMARY KEY AUTOINCREMENT,
    username            TEXT NOT NULL UNIQUE,
    email               TEXT NOT NULL,
    password_hash       TEXT,
    external_sub        TEXT UNIQUE,
    profile_picture_url TEXT,
    token_version       INTEGER NOT NULL DEFAULT 0,
    created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS titles (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    type           TEXT NOT NULL CHECK (type IN ('GAME','VIDEO','BOOK')),
    original_title TEXT NOT NULL,
    korean_title   TEXT,
    release_date   TEXT,
    cover_url      TEXT,
    summary        TEXT,
    is_explicit    INTEGER NOT NULL DEFAULT 0,
    status         TEXT NOT NULL DEFAULT 'ACTIVE',
    created_by     INTEGER NOT NULL REFERENCES users(id),
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS title_aliases (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    title_id   INTEGER NOT NULL REFERENCES titles(id),
    alias_text TEXT NOT NULL,
    UNIQUE (title_id, alias_text)
);

CREATE TABLE IF NOT EXISTS title_stats (
    title_id        INTEGER PRIMARY KEY REFERENCES titles(id),
    avg_graphics_x2 REAL NOT NULL DEFAULT 0,
    avg_story_x2    REAL NOT NULL DEFAULT 0,
    avg_music_x2    REAL NOT NULL DEFAULT 0,
    avg_etc_x2      REAL NOT NULL DEFAULT 0,
    review_count    INTEGER NOT NULL DEFAULT 0,
    comment_count   INTEGER NOT NULL DEFAULT 0,
    updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS characters (
    id                       INTEGER PRIMARY KEY AUTOINCREMENT,
    title_id                 INTEGER NOT NULL REFERENCES titles(id),
    original_name            TEXT NOT NULL,
    korean_name              TEXT,
    normalized_original_name TEXT NOT NULL,
    normalized_korean_name   TEXT,
    image_url                TEXT,
    is_explicit              INTEGER NOT NULL DEFAULT 0,
    status                   TEXT NOT NULL DEFAULT 'ACTIVE',
    created_by               INTEGER NOT NULL REFERENCES users(id),
    created_at               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (title_id, normalized_original_name)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_characters_korean_name
    ON characters (title_id, normalized_korean_name)
    WHERE normalized_korean_name IS NOT NULL;

CREATE TABLE IF NOT EXISTS units (
    id                  INTEGER PRIMARY KEY AUTOINCREMENT,
    title_id            INTEGER NOT NULL REFERENCES titles(id),
    unit_type           TEXT NOT NULL CHECK (unit_type IN ('VOLUME','EPISODE','ROUTE')),
    unit_key            TEXT NOT NULL,
    normalized_unit_key TEXT NOT NULL,
    display_name        TEXT,
    sort_order          INTEGER,
    release_date        TEXT,
    character_id        INTEGER REFERENCES characters(id),
    status              TEXT NOT NULL DEFAULT 'ACTIVE',
    created_by          INTEGER NOT NULL REFERENCES users(id),
    created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (title_id, unit_type, normalized_unit_key)
);

CREATE TABLE IF NOT EXISTS user_reviews (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id      INTEGER NOT NULL REFERENCES users(id),
    title_id     INTEGER NOT NULL REFERENCES titles(id),
    graphics_x2  INTEGER NOT NULL,
    story_x2     INTEGER NOT NULL,
    music_x2     INTEGER NOT NULL,
    etc_x2       INTEGER NOT NULL,
    review_text  TEXT,
    spoiler_flag INTEGER NOT NULL DEFAULT 0,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (user_id, title_id)
);

CREATE TABLE IF NOT EXISTS comments (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    title_id     INTEGER NOT NULL REFERENCES titles(id),
    user_id      INTEGER NOT NULL REFERENCES users(id),
    body         TEXT NOT NULL,
    spoiler_flag INTEGER NOT NULL DEFAULT 0,
    parent_id    INTEGER,
    status       TEXT NOT NULL DEFAULT 'ACTIVE',
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS user_progress (
    user_id     INTEGER NOT NULL REFERENCES users(id),
    unit_id     INTEGER NOT NULL REFERENCES units(id),
    status      TEXT NOT NULL DEFAULT 'NONE' CHECK (status IN ('NONE','PROGRESS','DONE')),
    started_at  DATETIME,
    finished_at DATETIME,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, unit_id)
);

CREATE TABLE IF NOT EXISTS guides (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    author_id   INTEGER NOT NULL REFERENCES users(id),
    title_id    INTEGER REFERENCES titles(id),
    unit_id     INTEGER REFERENCES units(id),
    guide_title TEXT NOT NULL,
    content     TEXT NOT NULL,
    visibility  TEXT NOT NULL DEFAULT 'PUBLIC',
    status      TEXT NOT NULL DEFAULT 'ACTIVE',
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK ((title_id IS NULL) != (unit_id IS NULL))
);

CREATE TABLE IF NOT EXISTS user_memos (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id      INTEGER NOT NULL REFERENCES users(id),
    title_id     INTEGER REFERENCES titles(id),
    unit_id      INTEGER REFERENCES units(id),
    memo_text    TEXT NOT NULL,
    spoiler_flag INTEGER NOT NULL DEFAULT 0,
    visibility   TEXT NOT NULL DEFAULT 'PRIVATE',
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK ((title_id IS NULL) != (unit_id IS NULL))
);

CREATE TABLE IF NOT EXISTS stores (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS user_library_items (
    user_id          INTEGER NOT NULL REFERENCES users(id),
    title_id         INTEGER NOT NULL REFERENCES titles(id),
    store_id         INTEGER NOT NULL REFERENCES stores(id),
    acquisition_type TEXT NOT NULL DEFAULT 'PURCHASE',
    note             TEXT,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, title_id)
);
`
