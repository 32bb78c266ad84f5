package leetcode

// GraphQL documents for the upstream API. Operation names match the
// upstream schema so they show up as-is in logs and metrics.

const queryProblemList = `query problemsetQuestionList($categorySlug: String, $limit: Int, $skip: Int, $filters: QuestionListFilterInput) {
  problemsetQuestionList: questionList(
    categorySlug: $categorySlug
    limit: $limit
    skip: $skip
    filters: $filters
  ) {
    total: totalNum
    questions: data {
      questionId
      questionFrontendId
      title
      titleSlug
      difficulty
      paidOnly: isPaidOnly
      hasSolution
      hasVideoSolution
    }
  }
}`

const queryQuestionData = `query questionData($titleSlug: String!) {
  question(titleSlug: $titleSlug) {
    questionId
    questionFrontendId
    title
    titleSlug
    content
    likes
    dislikes
    stats
    similarQuestions
    categoryTitle
    hints
    topicTags { name }
    companyTags { name }
    difficulty
    isPaidOnly
    solution { canSeeDetail content }
    hasSolution
    hasVideoSolution
  }
}`

const queryUserProfile = `query userPublicProfile($username: String!) {
  matchedUser(username: $username) {
    username
    githubUrl
    twitterUrl
    linkedinUrl
    profile {
      userAvatar
      realName
      websites
      countryName
      company
      jobTitle
      skillTags
      school
      aboutMe
      postViewCount
      postViewCountDiff
      reputation
      reputationDiff
      ranking
      solutionCount
      solutionCountDiff
      categoryDiscussCount
      categoryDiscussCountDiff
      certificationLevel
    }
    submitStats {
      acSubmissionNum {
        difficulty
        count
        submissions
      }
      totalSubmissionNum {
        difficulty
        count
        submissions
      }
    }
    contestBadge {
      name
      expired
      hoverText
      icon
    }
  }
}`

const queryUserContests = `query userContestRankingInfo($username: String!) {
  userContestRanking(username: $username) {
    attendedContestsCount
    rating
    globalRanking
    totalParticipants
    topPercentage
    badge {
      name
    }
  }
  userContestRankingHistory(username: $username) {
    attended
    trendDirection
    problemsSolved
    totalProblems
    finishTimeInSeconds
    rating
    ranking
    contest {
      title
      startTime
    }
  }
}`

const queryRecentSubmissions = `query recentSubmissions($username: String!, $limit: Int) {
  recentSubmissionList(username: $username, limit: $limit) {
    id
    title
    titleSlug
    timestamp
    status
    statusDisplay
    lang
    langName
    runtime
    memory
    url
    isPending
    hasNotes
    notes
    flagType
    frontendId
    topicTags {
      id
    }
  }
}`

const queryDailyChallenge = `query questionOfToday {
  activeDailyCodingChallengeQuestion {
    date
    link
    question {
      questionId
      questionFrontendId
      title
      titleSlug
      translatedTitle
      difficulty
      acRate
      topicTags {
        name
        slug
        nameTranslated: translatedName
      }
      content
    }
  }
}`
