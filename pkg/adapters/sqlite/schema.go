package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS graphs (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  first_node TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS nodes (
  graph_id TEXT NOT NULL REFERENCES graphs(id) ON DELETE CASCADE,
  id TEXT NOT NULL,
  type TEXT NOT NULL,
  text TEXT NOT NULL DEFAULT '',
  markup TEXT NOT NULL DEFAULT '',
  pos_x REAL NOT NULL DEFAULT 0,
  pos_y REAL NOT NULL DEFAULT 0,
  successor TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (graph_id, id)
);
CREATE TABLE IF NOT EXISTS answers (
  graph_id TEXT NOT NULL REFERENCES graphs(id) ON DELETE CASCADE,
  node_id TEXT NOT NULL,
  id TEXT NOT NULL,
  idx INTEGER NOT NULL,
  text TEXT NOT NULL DEFAULT '',
  successor TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (graph_id, id)
);
CREATE INDEX IF NOT EXISTS answers_by_node ON answers (graph_id, node_id, idx);
CREATE TABLE IF NOT EXISTS node_tags (
  graph_id TEXT NOT NULL REFERENCES graphs(id) ON DELETE CASCADE,
  node_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  tag TEXT NOT NULL,
  PRIMARY KEY (graph_id, node_id, position)
);
CREATE TABLE IF NOT EXISTS data_tables (
  graph_id TEXT NOT NULL REFERENCES graphs(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  columns TEXT NOT NULL,
  PRIMARY KEY (graph_id, name)
);
CREATE TABLE IF NOT EXISTS data_rows (
  graph_id TEXT NOT NULL,
  table_name TEXT NOT NULL,
  position INTEGER NOT NULL,
  data TEXT NOT NULL,
  PRIMARY KEY (graph_id, table_name, position),
  FOREIGN KEY (graph_id, table_name) REFERENCES data_tables(graph_id, name) ON DELETE CASCADE
);
`
