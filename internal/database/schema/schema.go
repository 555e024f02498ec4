package schema

// SchemaSQL contains the full database schema initialization script
const SchemaSQL = `
-- Reward Economy Schema

-- 1. Accounts: the per-user XP ledger.
CREATE TABLE IF NOT EXISTS accounts (
    user_id VARCHAR(100) PRIMARY KEY,
    xp INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0),
    -- New accounts start at level 1; level 1 itself never mints a box.
    granted_up_to_level INTEGER NOT NULL DEFAULT 1 CHECK (granted_up_to_level >= 1),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- 2. Wallets: token balance, one row per account, created lazily.
CREATE TABLE IF NOT EXISTS wallets (
    user_id VARCHAR(100) PRIMARY KEY REFERENCES accounts(user_id) ON DELETE CASCADE,
    token_balance INTEGER NOT NULL DEFAULT 0 CHECK (token_balance >= 0)
);

-- 3. Loot boxes. Status only ever moves forward: PENDING -> OPENED -> CLAIMED.
CREATE TABLE IF NOT EXISTS loot_boxes (
    loot_box_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id VARCHAR(100) NOT NULL REFERENCES accounts(user_id) ON DELETE CASCADE,
    tier VARCHAR(20) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
    source VARCHAR(50),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    opened_at TIMESTAMPTZ,
    claimed_at TIMESTAMPTZ,
    CONSTRAINT loot_boxes_status_check CHECK (status IN ('PENDING', 'OPENED', 'CLAIMED'))
);

CREATE INDEX IF NOT EXISTS idx_loot_boxes_user_status ON loot_boxes (user_id, status, created_at);

-- 4. Drops: written once when a box is opened, immutable thereafter.
CREATE TABLE IF NOT EXISTS loot_drops (
    drop_id BIGSERIAL PRIMARY KEY,
    loot_box_id UUID NOT NULL REFERENCES loot_boxes(loot_box_id) ON DELETE CASCADE,
    reward_type VARCHAR(20) NOT NULL,
    reward_ref TEXT,
    quantity INTEGER NOT NULL CHECK (quantity > 0),
    rarity VARCHAR(20) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_loot_drops_box ON loot_drops (loot_box_id);

-- 5. Inventory: append-only claim history for non-token rewards.
CREATE TABLE IF NOT EXISTS inventory_items (
    inventory_item_id BIGSERIAL PRIMARY KEY,
    user_id VARCHAR(100) NOT NULL REFERENCES accounts(user_id) ON DELETE CASCADE,
    item_type VARCHAR(20) NOT NULL,
    item_ref TEXT,
    quantity INTEGER NOT NULL CHECK (quantity > 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_inventory_items_user ON inventory_items (user_id, created_at DESC);

-- 6. Notifications surfaced by the UI collaborator.
CREATE TABLE IF NOT EXISTS notifications (
    notification_id BIGSERIAL PRIMARY KEY,
    user_id VARCHAR(100) NOT NULL REFERENCES accounts(user_id) ON DELETE CASCADE,
    type VARCHAR(50) NOT NULL,
    title TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    read_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications (user_id, type) WHERE read_at IS NULL;
`
