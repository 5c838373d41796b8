package api

// Kind distinguishes reads from writes for logging and metrics.
type Kind uint8

const (
	KindQuery Kind = iota
	KindMutation
)

func (k Kind) String() string {
	if k == KindMutation {
		return "mutation"
	}
	return "query"
}

// Operation is a named GraphQL document. The operation name always matches its
// root field.
type Operation struct {
	Name     string
	Kind     Kind
	Document string
}

const postFields = `
      id
      body
      createdAt
      username
      likeCount
      likes {
        id
        username
        createdAt
      }
      commentCount
      comments {
        id
        username
        createdAt
        body
      }`

const userFields = `
      id
      email
      username
      createdAt
      token`

const commentListFields = `
      id
      comments {
        id
        body
        createdAt
        username
      }
      commentCount`

var (
	OpLogin = Operation{Name: "login", Kind: KindMutation, Document: `
  mutation login($username: String!, $password: String!) {
    login(username: $username, password: $password) {` + userFields + `
    }
  }`}

	OpRegister = Operation{Name: "register", Kind: KindMutation, Document: `
  mutation register($username: String!, $email: String!, $password: String!, $confirmPassword: String!) {
    register(registerInput: {username: $username, email: $email, password: $password, confirmPassword: $confirmPassword}) {` + userFields + `
    }
  }`}

	OpGetPosts = Operation{Name: "getPosts", Kind: KindQuery, Document: `
  query getPosts {
    getPosts {` + postFields + `
    }
  }`}

	OpGetPost = Operation{Name: "getPost", Kind: KindQuery, Document: `
  query getPost($postId: ID!) {
    getPost(postId: $postId) {` + postFields + `
    }
  }`}

	OpCreatePost = Operation{Name: "createPost", Kind: KindMutation, Document: `
  mutation createPost($body: String!) {
    createPost(body: $body) {` + postFields + `
    }
  }`}

	OpDeletePost = Operation{Name: "deletePost", Kind: KindMutation, Document: `
  mutation deletePost($postId: ID!) {
    deletePost(postId: $postId)
  }`}

	OpLikePost = Operation{Name: "likePost", Kind: KindMutation, Document: `
  mutation likePost($postId: ID!) {
    likePost(postId: $postId) {
      id
      likes {
        id
        username
      }
      likeCount
    }
  }`}

	OpCreateComment = Operation{Name: "createComment", Kind: KindMutation, Document: `
  mutation createComment($postId: String!, $body: String!) {
    createComment(postId: $postId, body: $body) {` + commentListFields + `
    }
  }`}

	OpDeleteComment = Operation{Name: "deleteComment", Kind: KindMutation, Document: `
  mutation deleteComment($postId: ID!, $commentId: ID!) {
    deleteComment(postId: $postId, commentId: $commentId) {` + commentListFields + `
    }
  }`}
)
