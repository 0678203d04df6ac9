// Package promptbuilder generates the prompts sent to the LLM: one for
// structuring raw OCR text into trade fields, one for the prose summary that
// goes into notification emails.
package promptbuilder

import (
	"encoding/json"
	"fmt"

	"github.com/vadiminshakov/tradeshot/internal/domain"
)

// ExtractionSystemPrompt pins the model into analyst mode for the
// structuring pass.
const ExtractionSystemPrompt = `You are an expert trading analyst. You receive OCR text extracted from trading chart screenshots and respond ONLY with valid JSON. No prose, no code fences.`

// SummarySystemPrompt pins the model into analyst mode for the email
// summary pass.
const SummarySystemPrompt = `You are a professional trading analyst. You write concise, insightful trade reviews for the trader who took the trade.`

// BuildExtractionPrompt formats the OCR text into the structuring request.
// The schema and example are spelled out inline: the model output is decoded
// tolerantly downstream, so the prompt is the only schema enforcement there is.
func BuildExtractionPrompt(ocrText, imageName string) string {
	return fmt.Sprintf(`Given OCR text from a trading screenshot, output ONLY valid JSON with the following keys:

ticker, timeframe, entry_price, exit_price, direction, pnl, pnl_amount, date_time, reason_or_annotations

IMPORTANT: For pnl_amount, extract only the numeric value (e.g., if you see "+38.07 USD", output 38.07)

OCR text from %s:
"""%s"""

Example output:
{
  "ticker": "SOLUSD",
  "timeframe": "5m",
  "entry_price": 150.25,
  "exit_price": 151.50,
  "direction": "long",
  "pnl": "+38.07 USD",
  "pnl_amount": 38.07,
  "date_time": "2025-07-06 14:20:58",
  "reason_or_annotations": "Quick scalp trade"
}`, imageName, ocrText)
}

// BuildSummaryPrompt formats a persisted record into the summary request.
func BuildSummaryPrompt(record domain.TradeRecord) string {
	payload, _ := json.MarshalIndent(record, "", "  ")
	return fmt.Sprintf(`Analyze the following trade data and provide a concise, insightful summary for the trader. Include assessment of the trade strategy, performance, and any recommendations.

TRADE DATA:
%s

Your analysis should:
1. Provide a brief overview of the trade (symbol, direction, price points)
2. Analyze the trade's performance
3. Highlight what went well or could be improved
4. Suggest any follow-up actions or patterns to watch for

Write in a professional, concise manner. Use no more than 300 words.`, string(payload))
}
