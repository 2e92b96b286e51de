package briefing

// DefaultGuidance is the scoring guidance used when an account has no
// custom briefing guidance saved.
const DefaultGuidance = `Important emails are:
- From people I know personally (not companies)
- Direct questions or requests to me
- Meeting invites needing a response
- Messages in active conversations
- Time-sensitive (mentions today, urgent, deadline)

Not important:
- Newsletters, receipts, automated, marketing, social`
