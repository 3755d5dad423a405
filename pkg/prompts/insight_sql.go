// Package prompts builds the system prompts sent to the completion endpoint.
package prompts

import (
	"fmt"
	"strings"
	"time"

	"github.com/storelens/storelens-engine/pkg/models"
)

// AllowedTables is the schema whitelist embedded in the prompt. It must
// stay in sync with the validator's allow-list wired in main.
var AllowedTables = []string{"orders", "order_items", "products", "customers", "categories"}

// schemaDoc describes the queryable tables, column by column. Only these
// tables exist as far as the model is concerned.
const schemaDoc = `### orders
- id (bigint), store_id (text), customer_id (bigint), status (text: pending|processing|completed|refunded|cancelled), total (numeric), currency (text), created_at (timestamptz)

### order_items
- id (bigint), store_id (text), order_id (bigint), product_id (bigint), quantity (int), price (numeric), subtotal (numeric)

### products
- id (bigint), store_id (text), name (text), sku (text), price (numeric), stock_quantity (int), category_id (bigint), created_at (timestamptz)

### customers
- id (bigint), store_id (text), email (text), first_name (text), last_name (text), total_spent (numeric), orders_count (int), created_at (timestamptz)

### categories
- id (bigint), store_id (text), name (text), slug (text)`

// BuildInsightSQLPrompt renders the system prompt for SQL generation. It is
// a pure function of the store context: same context, same prompt.
func BuildInsightSQLPrompt(storeCtx models.StoreContext) string {
	var prompt strings.Builder

	prompt.WriteString("You are a PostgreSQL analyst for an e-commerce store. ")
	prompt.WriteString("Convert the merchant's question into a single read-only SQL query over the schema below.\n\n")

	prompt.WriteString("## Schema\n\n")
	prompt.WriteString(schemaDoc)
	prompt.WriteString("\n\n")

	prompt.WriteString("## Store context\n\n")
	prompt.WriteString(fmt.Sprintf("- Currency: %s\n", storeCtx.Currency))
	prompt.WriteString(fmt.Sprintf("- Orders: %d\n", storeCtx.OrderCount))
	prompt.WriteString(fmt.Sprintf("- Products: %d\n", storeCtx.ProductCount))
	prompt.WriteString(fmt.Sprintf("- Customers: %d\n", storeCtx.CustomerCount))
	prompt.WriteString(fmt.Sprintf("- Categories: %d\n", storeCtx.CategoryCount))
	if storeCtx.FirstOrderAt != nil && storeCtx.LastOrderAt != nil {
		prompt.WriteString(fmt.Sprintf("- Order history: %s to %s\n",
			storeCtx.FirstOrderAt.Format(time.DateOnly),
			storeCtx.LastOrderAt.Format(time.DateOnly)))
	}
	prompt.WriteString("\n")

	prompt.WriteString("## Rules\n\n")
	prompt.WriteString("1. Generate exactly one SELECT statement. Never generate INSERT, UPDATE, DELETE, DROP, CREATE, ALTER, TRUNCATE, GRANT, or REVOKE.\n")
	prompt.WriteString("2. Use only the tables listed above.\n")
	prompt.WriteString("3. Every table you query MUST be filtered by store_id = $1. Never use a literal store id.\n")
	prompt.WriteString("4. Do not use UNION.\n")
	prompt.WriteString("5. Include a LIMIT clause.\n")
	prompt.WriteString("6. Monetary values are in the store currency shown above.\n\n")

	prompt.WriteString("## Response format\n\n")
	prompt.WriteString("Respond with a single JSON object, no markdown:\n")
	prompt.WriteString(`{"sql": "<the SQL query>", "explanation": "<one sentence describing what the query computes>", "chartSpec": <chart spec object or null>}`)
	prompt.WriteString("\n\nWhen the result suits a visualization, set chartSpec to ")
	prompt.WriteString(`{"type": "bar"|"line"|"pie"|"doughnut"|"table", "title": "<chart title>", "dataKey": "<result column holding values>", "labelKey": "<result column holding labels>", "xLabel": "<optional>", "yLabel": "<optional>"}`)
	prompt.WriteString(". Use null when a plain answer is enough.\n")

	return prompt.String()
}
