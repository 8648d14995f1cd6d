package sqlstore

// Schema for the MySQL backend. Item fields that never appear in a WHERE
// clause travel in the props JSON document, mirroring how the chat layer
// stores work items as typed messages with a property bag.
const schema = `
CREATE TABLE IF NOT EXISTS work_items (
	id         VARCHAR(64)  NOT NULL PRIMARY KEY,
	kind       VARCHAR(16)  NOT NULL,
	channel_id VARCHAR(64)  NOT NULL,
	title      VARCHAR(500) NOT NULL,
	status     VARCHAR(16)  NOT NULL,
	creator_id VARCHAR(64)  NOT NULL,
	priority   TINYINT(1)   NOT NULL DEFAULT 0,
	props      JSON         NULL,
	created_at DATETIME(6)  NOT NULL,
	updated_at DATETIME(6)  NOT NULL,
	KEY idx_work_items_channel_kind_status (channel_id, kind, status),
	KEY idx_work_items_creator (creator_id)
);

CREATE TABLE IF NOT EXISTS channels (
	id        VARCHAR(64) NOT NULL PRIMARY KEY,
	technical TINYINT(1)  NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS channel_members (
	channel_id VARCHAR(64) NOT NULL,
	user_id    VARCHAR(64) NOT NULL,
	PRIMARY KEY (channel_id, user_id)
);
`
