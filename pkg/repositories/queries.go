package repositories

// topScoresQuery selects each user's best score on a leaderboard. Ties go to
// the earlier submission. Placeholders are rewritten per driver.
const topScoresQuery = `
SELECT user_id, name, score, submission_id, created_at FROM (
	SELECT s.user_id, u.name, s.score, CAST(s.submission_id AS TEXT) AS submission_id, s.created_at,
		ROW_NUMBER() OVER (PARTITION BY s.user_id ORDER BY s.score DESC, s.created_at ASC) AS rn
	FROM scores s
	JOIN users u ON u.id = s.user_id
	WHERE s.leaderboard_id = %s
) best
WHERE rn = 1
ORDER BY score DESC, created_at ASC
LIMIT %s;
`

// scoreBySubmissionQuery selects one stored score with its player's name.
const scoreBySubmissionQuery = `
SELECT CAST(s.submission_id AS TEXT), s.leaderboard_id, s.user_id, u.name, s.score, s.created_at
FROM scores s
JOIN users u ON u.id = s.user_id
WHERE s.submission_id = %s;
`
